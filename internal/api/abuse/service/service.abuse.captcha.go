package abusesvc

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/Friend-Renter/fr-marketing-api/internal/common"
	"github.com/Friend-Renter/fr-marketing-api/internal/logger"
)

// DefaultSiteVerifyURL là endpoint xác minh reCAPTCHA của Google
const DefaultSiteVerifyURL = "https://www.google.com/recaptcha/api/siteverify"

// CaptchaService xác minh token reCAPTCHA phía server.
// Mọi đường lỗi đều fail-closed: token rỗng, secret thiếu, network
// lỗi, Google trả success=false — tất cả đều không cho lead đi qua.
type CaptchaService struct {
	secret    string
	verifyURL string
	client    *http.Client
}

// NewCaptchaService khởi tạo CaptchaService.
// verifyURL rỗng → dùng endpoint mặc định của Google.
func NewCaptchaService(secret, verifyURL string) *CaptchaService {
	if verifyURL == "" {
		verifyURL = DefaultSiteVerifyURL
	}
	return &CaptchaService{
		secret:    secret,
		verifyURL: verifyURL,
		client:    &http.Client{Timeout: 5 * time.Second},
	}
}

// siteVerifyResponse là payload Google trả về từ siteverify
type siteVerifyResponse struct {
	Success    bool     `json:"success"`
	ErrorCodes []string `json:"error-codes"`
}

// Verify gửi token lên siteverify và kiểm tra kết quả.
// remoteIP là optional — có thì gửi kèm để Google đánh giá chính xác hơn.
func (s *CaptchaService) Verify(ctx context.Context, token, remoteIP string) error {
	if s.secret == "" {
		logger.GetErrorLogger().Error("RECAPTCHA_SECRET chưa được cấu hình")
		return common.ErrMisconfigured
	}
	if token == "" {
		return common.ErrCaptchaFailed
	}

	form := url.Values{}
	form.Set("secret", s.secret)
	form.Set("response", token)
	if remoteIP != "" {
		form.Set("remoteip", remoteIP)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.verifyURL, strings.NewReader(form.Encode()))
	if err != nil {
		return common.ErrCaptchaFailed
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := s.client.Do(req)
	if err != nil {
		logger.GetErrorLogger().WithError(err).Error("Không gọi được reCAPTCHA siteverify")
		return common.ErrCaptchaFailed
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<16))
	if err != nil {
		return common.ErrCaptchaFailed
	}

	var result siteVerifyResponse
	if err := json.Unmarshal(body, &result); err != nil {
		logger.GetErrorLogger().WithError(err).Error("Response siteverify không parse được")
		return common.ErrCaptchaFailed
	}
	if !result.Success {
		if len(result.ErrorCodes) > 0 {
			logger.GetAppLogger().WithField("error_codes", result.ErrorCodes).Warn("reCAPTCHA từ chối token")
		}
		return common.ErrCaptchaFailed
	}
	return nil
}
