package services

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"
)

// SMSService sends and checks one-time passcodes through the Twilio
// Verify API. When credentials are missing it stays disabled and every
// call fails fast, so the rest of the app can still run locally.
type SMSService struct {
	AccountSID string
	AuthToken  string
	ServiceSID string
	BaseURL    string
	Enabled    bool

	client *http.Client
}

func NewSMSService() *SMSService {
	sid := os.Getenv("TWILIO_ACCOUNT_SID")
	token := os.Getenv("TWILIO_AUTH_TOKEN")
	service := os.Getenv("TWILIO_VERIFY_SERVICE_SID")
	baseURL := os.Getenv("TWILIO_VERIFY_BASE_URL")
	if baseURL == "" {
		baseURL = "https://verify.twilio.com/v2"
	}

	enabled := sid != "" && token != "" && service != ""
	if !enabled {
		log.Println("SMSService disabled: Missing Twilio environment variables.")
	}

	return &SMSService{
		AccountSID: sid,
		AuthToken:  token,
		ServiceSID: service,
		BaseURL:    baseURL,
		Enabled:    enabled,
		client:     &http.Client{Timeout: 10 * time.Second},
	}
}

type verificationResponse struct {
	SID    string `json:"sid"`
	Status string `json:"status"`
}

func (s *SMSService) post(path string, form url.Values) (*verificationResponse, error) {
	endpoint := fmt.Sprintf("%s/Services/%s/%s", s.BaseURL, s.ServiceSID, path)
	req, err := http.NewRequest(http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, err
	}
	req.SetBasicAuth(s.AccountSID, s.AuthToken)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("verify API returned status %d", resp.StatusCode)
	}

	var result verificationResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, err
	}
	return &result, nil
}

// SendOTP starts a verification for the phone number and returns the
// provider's verification SID.
func (s *SMSService) SendOTP(phone string) (string, error) {
	if !s.Enabled {
		return "", fmt.Errorf("SMS service not configured")
	}

	form := url.Values{}
	form.Set("To", phone)
	form.Set("Channel", "sms")

	result, err := s.post("Verifications", form)
	if err != nil {
		return "", err
	}
	return result.SID, nil
}

// CheckOTP verifies the code the user typed. Returns true only when the
// provider reports the verification as approved.
func (s *SMSService) CheckOTP(phone, code string) (bool, error) {
	if !s.Enabled {
		return false, fmt.Errorf("SMS service not configured")
	}

	form := url.Values{}
	form.Set("To", phone)
	form.Set("Code", code)

	result, err := s.post("VerificationCheck", form)
	if err != nil {
		return false, err
	}
	return result.Status == "approved", nil
}
