package logging

import (
	"os"
	"strings"

	"github.com/2beens/fitlog/pkg"

	"github.com/getsentry/sentry-go"
	"github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"
)

type LoggerSetupParams struct {
	LogFileName      string
	LogToStdout      bool
	LogLevel         string
	LogFormatJSON    bool
	Environment      string
	SentryEnabled    bool
	SentryDSN        string
	SentryServerName string
}

func Setup(params LoggerSetupParams) {
	if params.LogFormatJSON {
		logrus.SetFormatter(&logrus.JSONFormatter{})
	}

	if params.SentryEnabled {
		if err := sentry.Init(sentry.ClientOptions{
			Environment: params.Environment,
			Dsn:         params.SentryDSN,
			ServerName:  params.SentryServerName,
		}); err != nil {
			logrus.Errorf("sentry init: %s", err)
		} else {
			logrus.AddHook(NewSentryHook([]logrus.Level{
				logrus.PanicLevel,
				logrus.FatalLevel,
				logrus.ErrorLevel,
			}))
			logrus.Infoln("sentry hook added")
		}
	}

	logrus.SetLevel(GetLevel(params.LogLevel))

	if params.LogFileName == "" {
		logrus.SetOutput(os.Stdout)
		logrus.Debugln("writing logs only to STDOUT")
		return
	}

	if !strings.HasSuffix(params.LogFileName, ".log") {
		params.LogFileName += ".log"
	}

	fileLogger := &lumberjack.Logger{
		Filename:   params.LogFileName,
		MaxSize:    50, // megabytes
		MaxBackups: 10,
		MaxAge:     90, // days
		LocalTime:  false,
		Compress:   true,
	}

	if params.LogToStdout {
		logrus.SetOutput(pkg.NewCombinedWriter(os.Stdout, fileLogger))
		logrus.Debugf("writing logs to STDOUT and %s", params.LogFileName)
	} else {
		logrus.SetOutput(fileLogger)
	}
}

// GetLevel parses level, unknown values mean trace.
func GetLevel(level string) logrus.Level {
	parsed, err := logrus.ParseLevel(strings.ToLower(level))
	if err != nil {
		return logrus.TraceLevel
	}
	return parsed
}
