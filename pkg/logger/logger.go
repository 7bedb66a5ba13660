// Package logger provides structured event logging for the whole
// service: an event name plus a flat field map per entry.
package logger

import (
	"os"

	"github.com/sirupsen/logrus"
)

var log = logrus.New()

func Init() {
	log.SetOutput(os.Stdout)
	log.SetFormatter(&logrus.JSONFormatter{})

	if level, err := logrus.ParseLevel(os.Getenv("LOG_LEVEL")); err == nil {
		log.SetLevel(level)
	} else {
		log.SetLevel(logrus.InfoLevel)
	}
}

func Info(event string, fields map[string]interface{}) {
	log.WithFields(logrus.Fields(fields)).Info(event)
}

func Warn(event string, fields map[string]interface{}) {
	log.WithFields(logrus.Fields(fields)).Warn(event)
}

func Error(event string, err error, fields map[string]interface{}) {
	log.WithFields(logrus.Fields(fields)).WithError(err).Error(event)
}

func InfoWithUser(userID, event string, fields map[string]interface{}) {
	log.WithFields(logrus.Fields(fields)).WithField("user_id", userID).Info(event)
}

func WarnWithUser(userID, event string, fields map[string]interface{}) {
	log.WithFields(logrus.Fields(fields)).WithField("user_id", userID).Warn(event)
}
