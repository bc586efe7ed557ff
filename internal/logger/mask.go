package logger

import "strings"

var _sensitiveKeys = map[string]struct{}{
	"api_key":       {},
	"apikey":        {},
	"apisecret":     {},
	"secret":        {},
	"token":         {},
	"authorization": {},
	"password":      {},
	"passwd":        {},
	"x-api-key":     {},
	"x-auth-token":  {},
}

// MaskParams copies params with the values of sensitive keys replaced by
// "***". Key comparison ignores case. Request parameters must go through
// this before they reach any log line.
func MaskParams(params map[string]string) map[string]string {
	if params == nil {
		return nil
	}

	masked := make(map[string]string, len(params))
	for k, v := range params {
		if _, ok := _sensitiveKeys[strings.ToLower(k)]; ok {
			masked[k] = "***"
			continue
		}
		masked[k] = v
	}
	return masked
}
