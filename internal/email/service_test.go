package email

import (
	"net/smtp"
	"strings"
	"testing"
)

func capturingService() (*Service, *[][]byte) {
	service := NewService(Config{
		Host:     "smtp.example.com",
		Port:     "587",
		Username: "mailer",
		Password: "secret",
		From:     "portal@example.com",
		FromName: "Vieira Advocacia",
	})
	var sent [][]byte
	service.send = func(addr string, a smtp.Auth, from string, to []string, msg []byte) error {
		sent = append(sent, msg)
		return nil
	}
	return service, &sent
}

func TestIsConfigured(t *testing.T) {
	service := NewService(Config{})
	if service.IsConfigured() {
		t.Fatal("empty config must not report as configured")
	}
	if err := service.SendEmail([]string{"a@b.com"}, "x", "y"); err == nil {
		t.Fatal("expected error sending with empty config")
	}

	service, _ = capturingService()
	if !service.IsConfigured() {
		t.Fatal("full config must report as configured")
	}
}

func TestSendEmailHeaders(t *testing.T) {
	service, sent := capturingService()

	if err := service.SendEmail([]string{"cliente@example.com"}, "Assunto", "Corpo"); err != nil {
		t.Fatalf("SendEmail failed: %v", err)
	}
	if len(*sent) != 1 {
		t.Fatalf("expected one message, got %d", len(*sent))
	}
	msg := string((*sent)[0])
	if !strings.Contains(msg, "From: Vieira Advocacia <portal@example.com>") {
		t.Error("expected display name in From header")
	}
	if !strings.Contains(msg, "To: cliente@example.com") {
		t.Error("expected To header")
	}
	if !strings.HasSuffix(msg, "Corpo") {
		t.Error("expected body after blank line")
	}
}

func TestSendPortalAccessEmail(t *testing.T) {
	service, sent := capturingService()

	err := service.SendPortalAccessEmail("cliente@example.com", PortalAccessData{
		OfficeName: "Vieira Advocacia",
		ClientName: "Mariana Costa",
		Email:      "cliente@example.com",
		Password:   "s3nh4-prov1sor1a",
		Processes:  []string{"0001234-56.2023.8.26.0100"},
	})
	if err != nil {
		t.Fatalf("SendPortalAccessEmail failed: %v", err)
	}

	msg := string((*sent)[0])
	if !strings.Contains(msg, "Mariana Costa") {
		t.Error("expected client name in body")
	}
	if !strings.Contains(msg, "s3nh4-prov1sor1a") {
		t.Error("expected generated password in body")
	}
	if !strings.Contains(msg, "0001234-56.2023.8.26.0100") {
		t.Error("expected linked process number in body")
	}
	if !strings.Contains(msg, "multipart/alternative") {
		t.Error("expected multipart message")
	}
}
