package mail

import (
	"context"
	"testing"

	"unilearn_backend/internal/config"
	"unilearn_backend/internal/util"

	"github.com/stretchr/testify/assert"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name string
		cfg  config.MailConfig
		want interface{}
	}{
		{name: "default", cfg: config.MailConfig{}, want: LogMailer{}},
		{name: "sendgrid without key", cfg: config.MailConfig{Provider: util.MailProviderSendGrid}, want: LogMailer{}},
		{name: "sendgrid", cfg: config.MailConfig{Provider: util.MailProviderSendGrid, SendGridAPIKey: "SG.key"}, want: &SendGridMailer{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.IsType(t, tt.want, New(tt.cfg))
		})
	}
}

func TestLogMailer(t *testing.T) {
	err := LogMailer{}.Send(context.Background(), Message{ToEmail: "a@example.com", Subject: "hi"})
	assert.NoError(t, err)
}
