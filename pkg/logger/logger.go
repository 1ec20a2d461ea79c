package logger

import (
	"compress/gzip"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"time"

	rotatelogs "github.com/lestrrat-go/file-rotatelogs"
	log "github.com/sirupsen/logrus"
)

// Formatter renders entries as "timestamp [LEVEL] message"
type Formatter struct {
	TimestampFormat string
	LevelDesc       []string
}

// Format formats an entry in the custom plain format
func (f *Formatter) Format(entry *log.Entry) ([]byte, error) {
	timestamp := entry.Time.Format(f.TimestampFormat)
	level := f.LevelDesc[entry.Level]
	msg := fmt.Sprintf("%s [%s] %s\n", timestamp, level, entry.Message)
	return []byte(msg), nil
}

// Init configures logrus with file rotation and console output
func Init() {
	log.SetFormatter(&Formatter{
		TimestampFormat: "2006-01-02 15:04:05.000",
		LevelDesc:       []string{"PANIC", "FATAL", "ERROR", "WARN", "INFO", "DEBUG", "TRACE"},
	})

	if os.Getenv("LOG_LEVEL") == "DEBUG" {
		log.SetLevel(log.DebugLevel)
	} else {
		log.SetLevel(log.InfoLevel)
	}

	logDirectory := os.Getenv("LOG_DIRECTORY")
	if logDirectory == "" {
		logDirectory = "./logs"
	}

	maxAge, err := strconv.Atoi(os.Getenv("LOG_FILE_MAX_AGE"))
	if err != nil || maxAge <= 0 {
		maxAge = 2 // days
	}

	rl, err := initRotation(logDirectory, maxAge)
	if err != nil {
		fmt.Println("Log rotation disabled:", err)
		log.SetOutput(os.Stdout)
		return
	}

	log.SetOutput(io.MultiWriter(os.Stdout, rl))
}

// initRotation sets up hourly rotation with gzip of rotated files
func initRotation(logDirectory string, maxAgeDays int) (*rotatelogs.RotateLogs, error) {
	if err := os.MkdirAll(logDirectory, 0755); err != nil {
		return nil, err
	}

	return rotatelogs.New(
		filepath.Join(logDirectory, "%Y-%m-%d-%H.log"),
		rotatelogs.WithLinkName(filepath.Join(logDirectory, "current.log")),
		rotatelogs.WithRotationTime(time.Hour),
		rotatelogs.WithMaxAge(time.Duration(maxAgeDays)*24*time.Hour),
		rotatelogs.WithHandler(rotatelogs.HandlerFunc(func(e rotatelogs.Event) {
			if e.Type() != rotatelogs.FileRotatedEventType {
				return
			}
			prev := e.(*rotatelogs.FileRotatedEvent).PreviousFile()
			if prev != "" {
				if err := compressLogFile(prev, prev+".gz"); err != nil {
					fmt.Println("Failed to compress rotated log:", err)
				}
			}
		})),
	)
}

// Info logs informational messages
func Info(message string) {
	log.Info(message)
}

// Error logs error messages
func Error(message string) {
	log.Error(message)
}

// Warn logs warning messages
func Warn(message string) {
	log.Warn(message)
}

// Debug logs debug messages
func Debug(message string) {
	log.Debug(message)
}

// Fatal logs fatal error and exits
func Fatal(message string) {
	log.Fatal(message)
}

// Infof logs formatted informational message
func Infof(format string, args ...interface{}) {
	Info(fmt.Sprintf(format, args...))
}

// Errorf logs formatted error message
func Errorf(format string, args ...interface{}) {
	Error(fmt.Sprintf(format, args...))
}

// Warnf logs formatted warning message
func Warnf(format string, args ...interface{}) {
	Warn(fmt.Sprintf(format, args...))
}

// Debugf logs formatted debug message
func Debugf(format string, args ...interface{}) {
	Debug(fmt.Sprintf(format, args...))
}

// compressLogFile compresses a rotated log file to gzip format
func compressLogFile(src, dst string) error {
	f, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("failed to open log file: %v", err)
	}
	defer f.Close()

	fi, err := os.Stat(src)
	if err != nil {
		return fmt.Errorf("failed to stat log file: %v", err)
	}

	gzf, err := os.OpenFile(dst, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, fi.Mode())
	if err != nil {
		return fmt.Errorf("failed to open compressed log file: %v", err)
	}
	defer gzf.Close()

	gz := gzip.NewWriter(gzf)
	defer gz.Close()

	if _, err := io.Copy(gz, f); err != nil {
		return err
	}
	return os.Remove(src)
}
