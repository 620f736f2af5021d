package vtesting

import (
	"regexp"

	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"www.velocidex.com/golang/minioncrypt/logging"
)

// MemoryLogs captures everything logged through the shared logger
// until Close is called.
type MemoryLogs struct {
	hook *test.Hook
}

func NewMemoryLogs() *MemoryLogs {
	return &MemoryLogs{hook: test.NewLocal(logging.RootLogger())}
}

func (self *MemoryLogs) Lines() []string {
	result := []string{}
	for _, entry := range self.hook.AllEntries() {
		result = append(result, entry.Message)
	}
	return result
}

func (self *MemoryLogs) Contain(t assert.TestingT, regex string, msgAndArgs ...interface{}) {
	if !self.ContainRegex(regex) {
		t.Errorf("Unable to find '%v' in memory logs %v", regex, msgAndArgs)
	}
}

func (self *MemoryLogs) ContainRegex(regex string) bool {
	re := regexp.MustCompile(regex)

	for _, line := range self.Lines() {
		if re.MatchString(line) {
			return true
		}
	}
	return false
}

func (self *MemoryLogs) Close() {
	self.hook.Reset()
}
