package views

import (
	"strings"
	"testing"
)

func TestSchemaColumns(t *testing.T) {
	cases := []struct {
		stream StreamType
		want   string
	}{
		{StreamCAN, "timestamp_ms,type,id,length,data_hex"},
		{StreamMotion, "timestamp_ms,accel_x,accel_y,accel_z,gyro_x,gyro_y,gyro_z"},
	}
	for _, c := range cases {
		if got := strings.Join(SchemaColumns[c.stream], ","); got != c.want {
			t.Errorf("%s columns = %q, want %q", c.stream, got, c.want)
		}
	}
}

func TestStreamTypeString(t *testing.T) {
	if StreamCAN.String() != "can" || StreamMotion.String() != "imu" {
		t.Errorf("Stream names = %q/%q", StreamCAN, StreamMotion)
	}
	if got := StreamType(99).String(); got != "unknown" {
		t.Errorf("Out-of-range stream name = %q", got)
	}
}
