package logger

// Nop discards everything. Components take it when the caller doesn't care
// about their logs; none of them may rely on a real logger being present.
type Nop struct{}

func (Nop) With(args ...interface{}) Logger { return Nop{} }

func (Nop) Debugf(template string, args ...interface{}) {}
func (Nop) Infof(template string, args ...interface{})  {}
func (Nop) Warnf(template string, args ...interface{})  {}
func (Nop) Errorf(template string, args ...interface{}) {}
func (Nop) Fatalf(template string, args ...interface{}) {}

func (Nop) Sync() error { return nil }
