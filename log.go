package proxysig

import (
	"github.com/privacybydesign/proxysig/keys"
	"github.com/sirupsen/logrus"
)

var Logger *logrus.Logger

func init() {
	Logger = logrus.StandardLogger()
	keys.Logger = Logger
}
