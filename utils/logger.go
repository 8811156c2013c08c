package utils

import (
	"io"
	"os"
	"sync"

	"github.com/sirupsen/logrus"
)

// LogWriter writes log entries to the console and the optional log file, each with its own level
type LogWriter struct {
	outputs []*logOutput
}

type logOutput struct {
	mutex  sync.Mutex
	writer io.Writer
	file   *os.File
	levels []logrus.Level
	format logrus.Formatter
}

// InitLogger configures the standard logger from the logging config.
// The returned LogWriter needs to be disposed on shutdown to close the log file.
func InitLogger() (*LogWriter, *logrus.Logger) {
	logger := logrus.StandardLogger()
	logWriter := &LogWriter{}

	outputLevel := parseLogLevel(logger, Config.Logging.OutputLevel, logrus.InfoLevel)
	consoleWriter := io.Writer(os.Stdout)
	if Config.Logging.OutputStderr {
		consoleWriter = os.Stderr
	}
	logWriter.outputs = append(logWriter.outputs, &logOutput{
		writer: consoleWriter,
		levels: logrus.AllLevels[:outputLevel+1],
		format: &logrus.TextFormatter{FullTimestamp: true},
	})

	maxLevel := outputLevel
	if Config.Logging.FilePath != "" {
		fileLevel := parseLogLevel(logger, Config.Logging.FileLevel, outputLevel)
		file, err := os.OpenFile(Config.Logging.FilePath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			logger.WithError(err).Errorf("error opening log file %v", Config.Logging.FilePath)
		} else {
			logWriter.outputs = append(logWriter.outputs, &logOutput{
				writer: file,
				file:   file,
				levels: logrus.AllLevels[:fileLevel+1],
				format: &logrus.TextFormatter{DisableColors: true, FullTimestamp: true},
			})
			if fileLevel > maxLevel {
				maxLevel = fileLevel
			}
		}
	}

	// entries are written by the hooks only
	logger.SetOutput(io.Discard)
	logger.SetLevel(maxLevel)
	for _, output := range logWriter.outputs {
		logger.AddHook(output)
	}

	return logWriter, logger
}

func parseLogLevel(logger *logrus.Logger, levelStr string, defaultLevel logrus.Level) logrus.Level {
	if levelStr == "" {
		return defaultLevel
	}
	level, err := logrus.ParseLevel(levelStr)
	if err != nil {
		logger.Warnf("invalid log level %v, using %v", levelStr, defaultLevel)
		return defaultLevel
	}
	return level
}

func (lw *LogWriter) Dispose() {
	for _, output := range lw.outputs {
		output.mutex.Lock()
		if output.file != nil {
			output.file.Sync()
			output.file.Close()
			output.file = nil
			output.writer = io.Discard
		}
		output.mutex.Unlock()
	}
}

func (lo *logOutput) Levels() []logrus.Level {
	return lo.levels
}

func (lo *logOutput) Fire(entry *logrus.Entry) error {
	line, err := lo.format.Format(entry)
	if err != nil {
		return err
	}

	lo.mutex.Lock()
	defer lo.mutex.Unlock()
	_, err = lo.writer.Write(line)
	return err
}
