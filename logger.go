package cachetap

import (
	"github.com/sirupsen/logrus"
)

type prefixedFormatter struct {
	prefix    string
	formatter logrus.Formatter
}

func (f prefixedFormatter) Format(entry *logrus.Entry) ([]byte, error) {
	b := []byte(f.prefix)

	formatted, err := f.formatter.Format(entry)
	if err != nil {
		return nil, err
	}

	return append(b, formatted...), nil
}

// NewPrefixedLogger derives a component logger writing to the parent's
// output with every entry prefixed.
func NewPrefixedLogger(logger *logrus.Logger, prefix string) *logrus.Logger {
	newLogger := logrus.New()
	newLogger.Out = logger.Out
	newLogger.SetLevel(logger.Level)
	newLogger.SetFormatter(prefixedFormatter{
		prefix:    prefix,
		formatter: logger.Formatter,
	})

	return newLogger
}
