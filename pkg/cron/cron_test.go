package cron

import (
	"bytes"
	"context"
	"fmt"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/matryer/is"
)

func TestCronLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := log.New(&buf)
	logger.SetLevel(log.DebugLevel)
	clogger := cronLogger{logger}
	clogger.Info("foo")
	clogger.Error(fmt.Errorf("bar"), "test")
	if buf.String() != "DEBU foo\nERRO test err=bar\n" {
		t.Errorf("unexpected log output: %s", buf.String())
	}
}

func TestSchedulerAddRemove(t *testing.T) {
	s := NewScheduler(context.TODO())
	id, err := s.AddFunc("* * * * *", func() {})
	if err != nil {
		t.Fatal(err)
	}
	s.Remove(id)
}

func TestSchedulerAddNamed(t *testing.T) {
	is := is.New(t)
	s := NewScheduler(context.TODO())

	id, err := s.AddNamed("noop", "@daily", func() {})
	is.NoErr(err)
	is.True(id > 0)
	is.Equal(len(s.Entries()), 1)

	id, err = s.AddNamed("disabled", "", func() {})
	is.NoErr(err)
	is.Equal(id, 0)
	is.Equal(len(s.Entries()), 1)

	_, err = s.AddNamed("broken", "not a spec", func() {})
	is.True(err != nil)
}
