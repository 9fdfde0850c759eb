package unixv6

import "github.com/sirupsen/logrus"

// Logger is used for diagnostic logging at mount/umount/mkfs boundaries and
// for conservative-allocation or exhaustion events. It is never consulted
// for control flow -- callers that don't care can safely ignore it.
//
// Defaults to logrus's standard logger; override for tests or to route
// logs elsewhere.
var Logger logrus.FieldLogger = logrus.StandardLogger()
