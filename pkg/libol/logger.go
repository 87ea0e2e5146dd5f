package libol

import (
	"container/list"
	"fmt"
	"io"
	"log"
	"runtime/debug"
	"sync"
	"time"
)

const (
	PRINT = 01
	LOG   = 05
	STACK = 06
	DEBUG = 10
	FLOW  = 11
	CMD   = 15
	EVENT = 16
	INFO  = 20
	WARN  = 30
	ERROR = 40
	FATAL = 99
)

type Message struct {
	Level   string `json:"level"`
	Date    string `json:"date"`
	Message string `json:"message"`
	Module  string `json:"module,omitempty"`
}

var levels = map[int]string{
	PRINT: "PRINT",
	LOG:   "LOG",
	DEBUG: "DEBUG",
	STACK: "STACK",
	FLOW:  "FLOW",
	CMD:   "CMD",
	EVENT: "EVENT",
	INFO:  "INFO",
	WARN:  "WARN",
	ERROR: "ERROR",
	FATAL: "FATAL",
}

type logger struct {
	Level    int
	FileName string
	FileLog  *log.Logger
	Lock     sync.Mutex
	History  *list.List
	Size     int
}

func (l *logger) Write(level int, module, format string, v ...interface{}) {
	str, ok := levels[level]
	if !ok {
		str = "NULL"
	}
	if level >= l.Level {
		log.Printf(fmt.Sprintf("%s|%s", str, format), v...)
	}
	if level >= INFO {
		l.Save(str, module, format, v...)
	}
}

func (l *logger) Save(level, module, format string, v ...interface{}) {
	m := fmt.Sprintf(format, v...)
	if l.FileLog != nil {
		l.FileLog.Printf("%s|%s\n", level, m)
	}
	l.Lock.Lock()
	defer l.Lock.Unlock()
	for l.History.Len() >= l.Size && l.History.Len() > 0 {
		l.History.Remove(l.History.Front())
	}
	l.History.PushBack(&Message{
		Level:   level,
		Date:    time.Now().Format(time.RFC3339),
		Message: m,
		Module:  module,
	})
}

// List returns the saved messages, newest first.
func (l *logger) List() []Message {
	l.Lock.Lock()
	defer l.Lock.Unlock()
	items := make([]Message, 0, l.History.Len())
	for ele := l.History.Back(); ele != nil; ele = ele.Prev() {
		items = append(items, *ele.Value.(*Message))
	}
	return items
}

// Writer is where the file log goes, or the standard logger's output.
func (l *logger) Writer() io.Writer {
	if l.FileLog != nil {
		return l.FileLog.Writer()
	}
	return log.Writer()
}

var Logger = &logger{
	Level:   INFO,
	History: list.New(),
	Size:    1024,
}

func SetLogger(file string, level int) {
	Logger.Level = level
	if file == "" || Logger.FileName == file {
		return
	}
	Logger.FileName = file
	fp, err := OpenWrite(file)
	if err == nil {
		Logger.FileLog = log.New(fp, "", log.LstdFlags)
	} else {
		Warn("Logger.Init: %s", err)
	}
}

func SetLevel(level int) {
	Logger.Level = level
}

func GetLevel() int {
	return Logger.Level
}

type SubLogger struct {
	*logger
	Prefix string
}

func NewSubLogger(prefix string) *SubLogger {
	return &SubLogger{
		logger: Logger,
		Prefix: prefix,
	}
}

var rLogger = NewSubLogger("root")

func HasLog(level int) bool {
	return rLogger.Has(level)
}

func Catch(name string) {
	if err := recover(); err != nil {
		Fatal("%s|PANIC >>> %s <<<", name, err)
		Fatal("%s|STACK >>> %s <<<", name, debug.Stack())
	}
}

func Print(format string, v ...interface{}) {
	rLogger.Print(format, v...)
}

func Debug(format string, v ...interface{}) {
	rLogger.Debug(format, v...)
}

func Cmd(format string, v ...interface{}) {
	rLogger.Cmd(format, v...)
}

func Info(format string, v ...interface{}) {
	rLogger.Info(format, v...)
}

func Warn(format string, v ...interface{}) {
	rLogger.Warn(format, v...)
}

func Error(format string, v ...interface{}) {
	rLogger.Error(format, v...)
}

func Fatal(format string, v ...interface{}) {
	rLogger.Fatal(format, v...)
}

func (s *SubLogger) Has(level int) bool {
	return level >= s.Level
}

func (s *SubLogger) Fmt(format string) string {
	return s.Prefix + "|" + format
}

func (s *SubLogger) write(level int, format string, v ...interface{}) {
	s.logger.Write(level, s.Prefix, s.Fmt(format), v...)
}

func (s *SubLogger) Print(format string, v ...interface{}) {
	s.write(PRINT, format, v...)
}

func (s *SubLogger) Printf(format string, v ...interface{}) {
	s.write(PRINT, format, v...)
}

func (s *SubLogger) Debug(format string, v ...interface{}) {
	s.write(DEBUG, format, v...)
}

func (s *SubLogger) Flow(format string, v ...interface{}) {
	s.write(FLOW, format, v...)
}

func (s *SubLogger) Cmd(format string, v ...interface{}) {
	s.write(CMD, format, v...)
}

func (s *SubLogger) Event(format string, v ...interface{}) {
	s.write(EVENT, format, v...)
}

func (s *SubLogger) Info(format string, v ...interface{}) {
	s.write(INFO, format, v...)
}

func (s *SubLogger) Warn(format string, v ...interface{}) {
	s.write(WARN, format, v...)
}

func (s *SubLogger) Error(format string, v ...interface{}) {
	s.write(ERROR, format, v...)
}

func (s *SubLogger) Fatal(format string, v ...interface{}) {
	s.write(FATAL, format, v...)
}

func init() {
	log.SetFlags(log.LstdFlags)
}
