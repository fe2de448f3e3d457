package esign_test

import (
	"testing"

	"github.com/quillsign/quill/internal/esign"
)

func TestStatusCanTransition(t *testing.T) {
	tests := []struct {
		name string
		from esign.Status
		to   esign.Status
		want bool
	}{
		{"uploaded to tagged", esign.StatusUploaded, esign.StatusTagged, true},
		{"uploaded to submitted", esign.StatusUploaded, esign.StatusSubmitted, false},
		{"uploaded to failed", esign.StatusUploaded, esign.StatusFailed, true},
		{"tagged to tagged", esign.StatusTagged, esign.StatusTagged, true},
		{"tagged to submitted", esign.StatusTagged, esign.StatusSubmitted, true},
		{"tagged to uploaded", esign.StatusTagged, esign.StatusUploaded, false},
		{"submitted to submitted", esign.StatusSubmitted, esign.StatusSubmitted, true},
		{"submitted to partially signed", esign.StatusSubmitted, esign.StatusPartiallySigned, true},
		{"submitted to completed", esign.StatusSubmitted, esign.StatusCompleted, true},
		{"submitted to tagged", esign.StatusSubmitted, esign.StatusTagged, false},
		{"partially signed to completed", esign.StatusPartiallySigned, esign.StatusCompleted, true},
		{"partially signed to submitted", esign.StatusPartiallySigned, esign.StatusSubmitted, false},
		{"completed to failed", esign.StatusCompleted, esign.StatusFailed, false},
		{"failed to tagged", esign.StatusFailed, esign.StatusTagged, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.from.CanTransition(tt.to); got != tt.want {
				t.Errorf("CanTransition(%s → %s) = %v, want %v", tt.from, tt.to, got, tt.want)
			}
		})
	}
}

func TestStatusTerminal(t *testing.T) {
	tests := []struct {
		status esign.Status
		want   bool
	}{
		{esign.StatusUploaded, false},
		{esign.StatusTagged, false},
		{esign.StatusSubmitted, false},
		{esign.StatusPartiallySigned, false},
		{esign.StatusCompleted, true},
		{esign.StatusFailed, true},
	}

	for _, tt := range tests {
		t.Run(string(tt.status), func(t *testing.T) {
			if got := tt.status.Terminal(); got != tt.want {
				t.Errorf("Terminal(%s) = %v, want %v", tt.status, got, tt.want)
			}
		})
	}
}
