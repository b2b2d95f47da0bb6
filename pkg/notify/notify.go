// Package notify mails a summary of the free domains found by a run
package notify

import (
	"fmt"
	"net/smtp"
	"strings"

	"github.com/mallocator/free-domains/pkg/config"
	"github.com/mallocator/free-domains/pkg/logger"
)

// SendFunc matches smtp.SendMail
type SendFunc func(addr string, a smtp.Auth, from string, to []string, msg []byte) error

// Notifier handles notification operations
type Notifier struct {
	cfg  *config.Config
	log  *logger.Logger
	send SendFunc
}

// New creates a new notifier
func New(cfg *config.Config, log *logger.Logger) *Notifier {
	return &Notifier{
		cfg:  cfg,
		log:  log,
		send: smtp.SendMail,
	}
}

// Configured reports whether enough SMTP settings are present to send mail
func (n *Notifier) Configured() bool {
	return n.cfg.SMTPHost != "" && n.cfg.EmailFrom != "" && n.cfg.EmailTo != ""
}

// SendSummary mails the list of free domains for tld. Nothing is sent when
// SMTP is not configured or nothing was found.
func (n *Notifier) SendSummary(tld string, free []string) {
	if !n.Configured() {
		n.log.Debugf("SMTP not configured, skipping summary mail")
		return
	}
	if len(free) == 0 {
		n.log.Debugf("No free .%s domains, skipping summary mail", tld)
		return
	}

	subject := fmt.Sprintf("%d free .%s domains", len(free), tld)
	msg := n.message(subject, strings.Join(free, "\r\n"))

	var auth smtp.Auth
	if n.cfg.SMTPUser != "" {
		auth = smtp.PlainAuth("", n.cfg.SMTPUser, n.cfg.SMTPPass, n.cfg.SMTPHost)
	}

	addr := fmt.Sprintf("%s:%d", n.cfg.SMTPHost, n.cfg.SMTPPort)
	if err := n.send(addr, auth, n.cfg.EmailFrom, []string{n.cfg.EmailTo}, msg); err != nil {
		n.log.Errorf("Failed to send summary mail: %v", err)
		return
	}
	n.log.Infof("Summary mail sent to %s", n.cfg.EmailTo)
}

func (n *Notifier) message(subject, body string) []byte {
	return []byte(fmt.Sprintf(
		"From: %s\r\n"+
			"To: %s\r\n"+
			"Subject: %s\r\n"+
			"\r\n"+
			"%s\r\n",
		n.cfg.EmailFrom,
		n.cfg.EmailTo,
		subject,
		body,
	))
}
