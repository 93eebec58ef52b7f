package bus

// Logger is the logging surface used by this package. It is satisfied by
// *logger.Logger.
//
//go:generate mockgen -source=logger.go -destination=mock_logger.go -package=bus
type Logger interface {
	Info(msg string, err error, fields ...map[string]interface{})
	Debug(msg string, err error, fields ...map[string]interface{})
	Warn(msg string, err error, fields ...map[string]interface{})
	Error(msg string, err error, fields ...map[string]interface{})
}
