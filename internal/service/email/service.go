package email

import (
	"bytes"
	"context"
	"embed"
	"fmt"
	"html/template"

	"github.com/resend/resend-go/v3"

	"blood-link/internal/config"
	"blood-link/internal/domain"
)

//go:embed templates/*.html
var templateFS embed.FS

type Message struct {
	To      string
	Subject string
	HTML    string
}

type Service interface {
	Send(ctx context.Context, msg Message) error
	SendDonorMatch(ctx context.Context, donor domain.DonorCandidate, req *domain.BloodRequest) error
	SendRequestDecision(ctx context.Context, req *domain.BloodRequest) error
	SendRequestAccepted(ctx context.Context, req *domain.BloodRequest, donorName string, donorPhone *string, message string) error
}

type service struct {
	client *resend.Client
	config *config.Config
}

func NewService(cfg *config.Config) Service {
	return &service{
		client: resend.NewClient(cfg.ResendAPIKey),
		config: cfg,
	}
}

func (s *service) Send(ctx context.Context, msg Message) error {
	params := &resend.SendEmailRequest{
		From:    fmt.Sprintf("Blood Link <%s>", s.config.FromEmail),
		To:      []string{msg.To},
		Html:    msg.HTML,
		Subject: msg.Subject,
	}

	if _, err := s.client.Emails.SendWithContext(ctx, params); err != nil {
		return fmt.Errorf("send email to %s: %w", msg.To, err)
	}
	return nil
}

func (s *service) render(templateName string, data interface{}) (string, error) {
	tmpl, err := template.ParseFS(templateFS, "templates/layout.html", "templates/"+templateName)
	if err != nil {
		return "", fmt.Errorf("failed to parse email templates: %w", err)
	}

	var body bytes.Buffer
	if err := tmpl.ExecuteTemplate(&body, "layout", data); err != nil {
		return "", fmt.Errorf("failed to execute email template: %w", err)
	}
	return body.String(), nil
}

func (s *service) requestLink(id fmt.Stringer) string {
	return fmt.Sprintf("https://%s/requests/%s", s.config.Domain, id)
}

func (s *service) SendDonorMatch(ctx context.Context, donor domain.DonorCandidate, req *domain.BloodRequest) error {
	data := struct {
		Title       string
		Name        string
		BloodGroup  string
		Urgency     domain.Urgency
		Location    string
		Hospital    string
		UnitsNeeded int
		Link        string
	}{
		Title:      "Blood donation request",
		Name:       donor.FullName,
		BloodGroup: req.BloodGroup.Label(),
		Urgency:    req.Urgency,
		Location:   req.Location,
		Link:       s.requestLink(req.ID),
	}
	if req.Hospital != nil {
		data.Hospital = *req.Hospital
	}
	if req.UnitsNeeded != nil {
		data.UnitsNeeded = *req.UnitsNeeded
	}

	html, err := s.render("donor_match.html", data)
	if err != nil {
		return err
	}
	subject := fmt.Sprintf("[%s] %s blood needed at %s", req.Urgency, req.BloodGroup.Label(), req.Location)
	return s.Send(ctx, Message{To: donor.Email, Subject: subject, HTML: html})
}

func (s *service) SendRequestDecision(ctx context.Context, req *domain.BloodRequest) error {
	approved := req.Status == domain.RequestApproved
	data := struct {
		Title      string
		Name       string
		BloodGroup string
		Approved   bool
		Link       string
	}{
		Title:      "Blood request update",
		Name:       req.ContactName,
		BloodGroup: req.BloodGroup.Label(),
		Approved:   approved,
		Link:       s.requestLink(req.ID),
	}

	html, err := s.render("request_decision.html", data)
	if err != nil {
		return err
	}
	subject := "Your blood request was approved"
	if !approved {
		subject = "Your blood request was rejected"
	}
	return s.Send(ctx, Message{To: req.RequesterEmail, Subject: subject, HTML: html})
}

func (s *service) SendRequestAccepted(ctx context.Context, req *domain.BloodRequest, donorName string, donorPhone *string, message string) error {
	data := struct {
		Title      string
		Name       string
		Message    string
		DonorName  string
		DonorPhone string
		Link       string
	}{
		Title:     "A donor accepted your request",
		Name:      req.ContactName,
		Message:   message,
		DonorName: donorName,
		Link:      s.requestLink(req.ID),
	}
	if donorPhone != nil {
		data.DonorPhone = *donorPhone
	}

	html, err := s.render("request_accepted.html", data)
	if err != nil {
		return err
	}
	return s.Send(ctx, Message{To: req.RequesterEmail, Subject: "A donor accepted your blood request", HTML: html})
}
