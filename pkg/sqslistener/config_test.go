package sqslistener

import (
	"strings"
	"testing"
)

func TestConfigValidate(t *testing.T) {
	scenarios := []struct {
		name    string
		build   func() Config
		wantErr []string
	}{
		{
			name:  "default config with a queue name is valid",
			build: func() Config { return NewConfig(WithQueueName("orders")) },
		},
		{
			name:    "missing queue name and url",
			build:   func() Config { return DefaultConfig() },
			wantErr: []string{"QueueName or QueueURL is required"},
		},
		{
			name: "queue name and url both set",
			build: func() Config {
				return NewConfig(WithQueueName("orders"), WithQueueURL("https://sqs/orders"))
			},
			wantErr: []string{"QueueName and QueueURL are mutually exclusive"},
		},
		{
			name: "max messages per poll out of range",
			build: func() Config {
				return NewConfig(WithQueueName("orders"), WithMaxMessagesPerPoll(11))
			},
			wantErr: []string{"MaxMessagesPerPoll must be in [1,10]"},
		},
		{
			name: "poll timeout out of range",
			build: func() Config {
				return NewConfig(WithQueueName("orders"), WithPollTimeoutSeconds(21))
			},
			wantErr: []string{"PollTimeoutSeconds must be in [0,20]"},
		},
		{
			name: "dlq enabled without a name",
			build: func() Config {
				cfg := NewConfig(WithQueueName("orders"))
				cfg.EnableDLQ = true
				return cfg
			},
			wantErr: []string{"DLQName is required when EnableDLQ is true"},
		},
		{
			name: "multiple violations are all reported",
			build: func() Config {
				cfg := NewConfig()
				cfg.MaxMessagesPerPoll = 0
				cfg.MaxConcurrentMessages = 0
				return cfg
			},
			wantErr: []string{
				"QueueName or QueueURL is required",
				"MaxMessagesPerPoll must be in [1,10]",
				"MaxConcurrentMessages must be greater than 0",
			},
		},
	}

	for _, scenario := range scenarios {
		t.Run(scenario.name, func(t *testing.T) {
			err := scenario.build().Validate()

			if len(scenario.wantErr) == 0 {
				if err != nil {
					t.Fatalf("Validate() = %v, want nil", err)
				}
				return
			}

			if err == nil {
				t.Fatalf("Validate() = nil, want error containing %v", scenario.wantErr)
			}
			for _, want := range scenario.wantErr {
				if !strings.Contains(err.Error(), want) {
					t.Errorf("Validate() = %q, want it to contain %q", err.Error(), want)
				}
			}
		})
	}
}

func TestNewConfigAppliesOptionsOverDefaults(t *testing.T) {
	cfg := NewConfig(
		WithQueueName("orders"),
		WithBatchMode(true),
		WithAutoDelete(false),
		WithMaxRetryAttempts(5),
		WithDLQ("orders-dlq"),
		WithMaxConcurrentMessages(2),
	)

	if cfg.QueueName != "orders" {
		t.Errorf("QueueName = %q, want orders", cfg.QueueName)
	}
	if !cfg.BatchMode {
		t.Errorf("BatchMode = false, want true")
	}
	if cfg.AutoDelete {
		t.Errorf("AutoDelete = true, want false")
	}
	if cfg.MaxRetryAttempts != 5 {
		t.Errorf("MaxRetryAttempts = %d, want 5", cfg.MaxRetryAttempts)
	}
	if !cfg.EnableDLQ || cfg.DLQName != "orders-dlq" {
		t.Errorf("EnableDLQ/DLQName = %v/%q, want true/orders-dlq", cfg.EnableDLQ, cfg.DLQName)
	}
	if cfg.MaxConcurrentMessages != 2 {
		t.Errorf("MaxConcurrentMessages = %d, want 2", cfg.MaxConcurrentMessages)
	}
	// Untouched defaults should survive option application.
	if cfg.PollTimeoutSeconds != 20 {
		t.Errorf("PollTimeoutSeconds = %d, want default 20", cfg.PollTimeoutSeconds)
	}
}
