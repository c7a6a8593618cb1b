package crypt_test

import (
	"bytes"
	"testing"

	"github.com/danmaku-tools/dmktk/archive/crypt"
)

func TestLadderSampleVector(t *testing.T) {
	s := crypt.Schedule{Key: 0x35, Step1: 0x97, Step2: 0, Block: 0x80, Limit: 0x80}
	got := s.Apply([]byte{0, 0, 0, 0})
	want := []byte{0x35, 0xcc, 0x63, 0xfa}
	if !bytes.Equal(got, want) {
		t.Fatalf("got %x, want %x", got, want)
	}
}

func TestLadderInvolutive(t *testing.T) {
	s := crypt.Schedule{Key: 0x35, Step1: 0x97, Step2: 0, Block: 0x80, Limit: 0x2800}
	data := []byte("the quick brown fox jumps over the lazy dog, 0123456789!")
	enc := s.Apply(data)
	dec := s.Apply(enc)
	if !bytes.Equal(dec, data) {
		t.Fatalf("ladder not involutive: got %x want %x", dec, data)
	}
}

func TestLadderInvolutiveWithStep2(t *testing.T) {
	s := crypt.Schedule{Key: 0x12, Step1: 0x03, Step2: 0x05, Block: 0x10, Limit: 200}
	data := bytes.Repeat([]byte{0xAA, 0x55}, 100)
	enc := s.Apply(data)
	dec := s.Apply(enc)
	if !bytes.Equal(dec, data) {
		t.Fatalf("stepped ladder not involutive")
	}
}

func TestLadderLeavesBytesBeyondLimitUnchanged(t *testing.T) {
	s := crypt.Schedule{Key: 0x01, Step1: 0x01, Block: 4, Limit: 4}
	data := []byte{1, 2, 3, 4, 5, 6, 7, 8}
	got := s.Apply(data)
	if !bytes.Equal(got[4:], []byte{5, 6, 7, 8}) {
		t.Fatalf("expected tail unchanged, got %x", got[4:])
	}
}

func TestHeaderScheduleInvolutive(t *testing.T) {
	s := crypt.HeaderSchedule{Key: 0x1b, Step1: 0x37, Block: 8, Limit: 32}
	data := bytes.Repeat([]byte{0x10, 0x20, 0x30, 0x40}, 8)
	enc := s.Apply(data)
	dec := s.Apply(enc)
	if !bytes.Equal(dec, data) {
		t.Fatalf("header schedule not involutive")
	}
}

func TestScheduleForExtension(t *testing.T) {
	cases := map[string]crypt.Schedule{
		".anm": crypt.ScheduleANM,
		"ECL":  crypt.ScheduleECL,
		"jpg":  crypt.ScheduleJPG,
		"xyz":  crypt.ScheduleDefault,
	}
	for ext, want := range cases {
		if got := crypt.ScheduleForExtension(ext); got != want {
			t.Errorf("ScheduleForExtension(%q) = %+v, want %+v", ext, got, want)
		}
	}
}
