package tiercache

// Fields is a minimal structured field map for logs.
type Fields map[string]any

// Logger is the leveled sink the handles report to. Adapters for zap, logrus
// and slog live under log/. A nil Options.Logger disables logging.
//
// Messages are emitted only off the happy path: rejected writes, failed
// remote writes and partial removes.
type Logger interface {
	Debug(msg string, f Fields)
	Info(msg string, f Fields)
	Warn(msg string, f Fields)
	Error(msg string, f Fields)
}

type NopLogger struct{}

func (NopLogger) Debug(string, Fields) {}
func (NopLogger) Info(string, Fields)  {}
func (NopLogger) Warn(string, Fields)  {}
func (NopLogger) Error(string, Fields) {}

// keyFields tags extra with the namespace and user key an event concerns.
func keyFields(ns, key string, extra Fields) Fields {
	f := make(Fields, len(extra)+2)
	for k, v := range extra {
		f[k] = v
	}
	f["ns"] = ns
	f["key"] = key
	return f
}
