package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/Prathmesh125/reviewsystem/internal/dto"
	"github.com/Prathmesh125/reviewsystem/internal/logger"
	"github.com/Prathmesh125/reviewsystem/internal/models"
	"github.com/Prathmesh125/reviewsystem/internal/plans"
	"github.com/Prathmesh125/reviewsystem/internal/qr"
	"github.com/Prathmesh125/reviewsystem/internal/repositories"
	"github.com/Prathmesh125/reviewsystem/pkg/apperrors"
)

type QRCodeService interface {
	Create(ctx context.Context, db *gorm.DB, ownerID string, req dto.CreateQRCodeRequest) (*dto.QRCodeResponse, error)
	GetByID(ctx context.Context, db *gorm.DB, ownerID, id string) (*dto.QRCodeResponse, error)
	GetImage(ctx context.Context, db *gorm.DB, id string) ([]byte, error)
	ListByBusiness(ctx context.Context, db *gorm.DB, ownerID, businessID string) ([]dto.QRCodeResponse, error)
	Update(ctx context.Context, db *gorm.DB, ownerID, id string, req dto.UpdateQRCodeRequest) (*dto.QRCodeResponse, error)
	Delete(ctx context.Context, db *gorm.DB, ownerID, id string) error

	// TrackScan records one scan event and bumps the denormalized counter
	// atomically. Public endpoint: no authentication, no entitlement check.
	TrackScan(ctx context.Context, db *gorm.DB, id, ipAddress, userAgent, location string) error
	ListScans(ctx context.Context, db *gorm.DB, ownerID, id string, page, pageSize int) ([]dto.ScanResponse, int64, error)
}

type qrCodeService struct {
	qrRepo        repositories.QRCodeRepository
	businessRepo  repositories.BusinessRepository
	entitlements  EntitlementService
	publicBaseURL string
}

func NewQRCodeService(
	qrRepo repositories.QRCodeRepository,
	businessRepo repositories.BusinessRepository,
	entitlements EntitlementService,
	publicBaseURL string,
) QRCodeService {
	return &qrCodeService{
		qrRepo:        qrRepo,
		businessRepo:  businessRepo,
		entitlements:  entitlements,
		publicBaseURL: publicBaseURL,
	}
}

func (s *qrCodeService) Create(ctx context.Context, db *gorm.DB, ownerID string, req dto.CreateQRCodeRequest) (*dto.QRCodeResponse, error) {
	business, err := s.businessRepo.FindByID(db, req.BusinessID)
	if err != nil {
		if errors.Is(err, repositories.ErrBusinessNotFound) {
			return nil, apperrors.ErrBusinessNotFound
		}
		return nil, apperrors.InternalError(err)
	}
	if business.OwnerID != ownerID {
		return nil, apperrors.ErrNotBusinessOwner
	}

	// The QR cap counts live codes, not monthly creations: deleting a code
	// frees its slot.
	plan, err := s.entitlements.ResolvePlan(ctx, db, business.ID)
	if err != nil {
		return nil, err
	}
	limit := plan.Limit(plans.FeatureQRCodes)
	if limit.Kind == plans.LimitCapped {
		existing, err := s.qrRepo.FindByBusiness(db, business.ID)
		if err != nil {
			return nil, apperrors.InternalError(err)
		}
		if len(existing) >= limit.Cap {
			return nil, apperrors.EntitlementDenied(map[string]interface{}{
				"feature":         string(plans.FeatureQRCodes),
				"used":            len(existing),
				"limit":           limit.Cap,
				"current_plan":    string(plan.ID),
				"upgrade_message": "Upgrade to Premium to create more QR codes.",
			})
		}
	}

	code := &models.QRCode{
		BusinessID:      business.ID,
		Label:           req.Label,
		TargetURL:       s.targetURL(business.Slug),
		Size:            req.Size,
		ForegroundColor: req.ForegroundColor,
		BackgroundColor: req.BackgroundColor,
		ErrorCorrection: strings.ToUpper(req.ErrorCorrection),
	}
	applyQRDefaults(code)

	image, err := qr.Render(code.TargetURL, renderOptions(code))
	if err != nil {
		return nil, apperrors.NewBadRequestError(err.Error())
	}
	code.ImageData = image

	if err := s.qrRepo.Create(db, code); err != nil {
		return nil, apperrors.InternalError(err)
	}

	logger.CtxInfo(ctx, "qr code created", "qr_code_id", code.ID, "business_id", business.ID)
	resp := toQRCodeResponse(code)
	return &resp, nil
}

func (s *qrCodeService) GetByID(ctx context.Context, db *gorm.DB, ownerID, id string) (*dto.QRCodeResponse, error) {
	code, err := s.loadOwnedCode(db, ownerID, id)
	if err != nil {
		return nil, err
	}
	resp := toQRCodeResponse(code)
	return &resp, nil
}

// GetImage serves the rendered PNG. Public: the image is meant to be printed
// and shared.
func (s *qrCodeService) GetImage(ctx context.Context, db *gorm.DB, id string) ([]byte, error) {
	code, err := s.qrRepo.FindByID(db, id)
	if err != nil {
		if errors.Is(err, repositories.ErrQRCodeNotFound) {
			return nil, apperrors.ErrQRCodeNotFound
		}
		return nil, apperrors.InternalError(err)
	}
	return code.ImageData, nil
}

func (s *qrCodeService) ListByBusiness(ctx context.Context, db *gorm.DB, ownerID, businessID string) ([]dto.QRCodeResponse, error) {
	business, err := s.businessRepo.FindByID(db, businessID)
	if err != nil {
		if errors.Is(err, repositories.ErrBusinessNotFound) {
			return nil, apperrors.ErrBusinessNotFound
		}
		return nil, apperrors.InternalError(err)
	}
	if business.OwnerID != ownerID {
		return nil, apperrors.ErrNotBusinessOwner
	}

	codes, err := s.qrRepo.FindByBusiness(db, businessID)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}

	out := make([]dto.QRCodeResponse, 0, len(codes))
	for i := range codes {
		out = append(out, toQRCodeResponse(&codes[i]))
	}
	return out, nil
}

func (s *qrCodeService) Update(ctx context.Context, db *gorm.DB, ownerID, id string, req dto.UpdateQRCodeRequest) (*dto.QRCodeResponse, error) {
	code, err := s.loadOwnedCode(db, ownerID, id)
	if err != nil {
		return nil, err
	}

	visualChanged := false
	if req.Label != nil {
		code.Label = *req.Label
	}
	if req.Size != nil && *req.Size != code.Size {
		code.Size = *req.Size
		visualChanged = true
	}
	if req.ForegroundColor != nil && *req.ForegroundColor != code.ForegroundColor {
		code.ForegroundColor = *req.ForegroundColor
		visualChanged = true
	}
	if req.BackgroundColor != nil && *req.BackgroundColor != code.BackgroundColor {
		code.BackgroundColor = *req.BackgroundColor
		visualChanged = true
	}
	if req.ErrorCorrection != nil && strings.ToUpper(*req.ErrorCorrection) != code.ErrorCorrection {
		code.ErrorCorrection = strings.ToUpper(*req.ErrorCorrection)
		visualChanged = true
	}

	// Re-render only when a visual field actually changed; a label edit keeps
	// the stored image byte-identical.
	if visualChanged {
		image, err := qr.Render(code.TargetURL, renderOptions(code))
		if err != nil {
			return nil, apperrors.NewBadRequestError(err.Error())
		}
		code.ImageData = image
	}

	if err := s.qrRepo.Update(db, code); err != nil {
		return nil, apperrors.InternalError(err)
	}

	resp := toQRCodeResponse(code)
	return &resp, nil
}

func (s *qrCodeService) Delete(ctx context.Context, db *gorm.DB, ownerID, id string) error {
	if _, err := s.loadOwnedCode(db, ownerID, id); err != nil {
		return err
	}
	if err := s.qrRepo.Delete(db, id); err != nil {
		return apperrors.InternalError(err)
	}
	logger.CtxInfo(ctx, "qr code deleted", "qr_code_id", id)
	return nil
}

func (s *qrCodeService) TrackScan(ctx context.Context, db *gorm.DB, id, ipAddress, userAgent, location string) error {
	scan := &models.QRScan{
		QRCodeID:  id,
		IPAddress: ipAddress,
		UserAgent: userAgent,
		Location:  location,
		ScannedAt: time.Now(),
	}
	if err := s.qrRepo.TrackScan(db, scan); err != nil {
		if errors.Is(err, repositories.ErrQRCodeNotFound) {
			return apperrors.ErrQRCodeNotFound
		}
		return apperrors.InternalError(err)
	}
	logger.CtxDebug(ctx, "qr scan tracked", "qr_code_id", id)
	return nil
}

func (s *qrCodeService) ListScans(ctx context.Context, db *gorm.DB, ownerID, id string, page, pageSize int) ([]dto.ScanResponse, int64, error) {
	if _, err := s.loadOwnedCode(db, ownerID, id); err != nil {
		return nil, 0, err
	}

	page, pageSize = normalizePage(page, pageSize)
	scans, total, err := s.qrRepo.ListScans(db, id, page, pageSize)
	if err != nil {
		return nil, 0, apperrors.InternalError(err)
	}

	out := make([]dto.ScanResponse, 0, len(scans))
	for _, scan := range scans {
		out = append(out, dto.ScanResponse{
			ID:        scan.ID,
			QRCodeID:  scan.QRCodeID,
			IPAddress: scan.IPAddress,
			UserAgent: scan.UserAgent,
			Location:  scan.Location,
			ScannedAt: scan.ScannedAt,
		})
	}
	return out, total, nil
}

func (s *qrCodeService) loadOwnedCode(db *gorm.DB, ownerID, id string) (*models.QRCode, error) {
	code, err := s.qrRepo.FindByID(db, id)
	if err != nil {
		if errors.Is(err, repositories.ErrQRCodeNotFound) {
			return nil, apperrors.ErrQRCodeNotFound
		}
		return nil, apperrors.InternalError(err)
	}

	business, err := s.businessRepo.FindByID(db, code.BusinessID)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}
	if business.OwnerID != ownerID {
		return nil, apperrors.ErrNotBusinessOwner
	}
	return code, nil
}

// targetURL is deterministic: the same business always gets the same review
// page link, so re-rendering a code never changes where it points.
func (s *qrCodeService) targetURL(slug string) string {
	return fmt.Sprintf("%s/r/%s", strings.TrimRight(s.publicBaseURL, "/"), slug)
}

func applyQRDefaults(code *models.QRCode) {
	if code.Size == 0 {
		code.Size = qr.DefaultSize
	}
	if code.ForegroundColor == "" {
		code.ForegroundColor = "#000000"
	}
	if code.BackgroundColor == "" {
		code.BackgroundColor = "#FFFFFF"
	}
	if code.ErrorCorrection == "" {
		code.ErrorCorrection = "M"
	}
}

func renderOptions(code *models.QRCode) qr.Options {
	return qr.Options{
		Size:            code.Size,
		ForegroundColor: code.ForegroundColor,
		BackgroundColor: code.BackgroundColor,
		ErrorCorrection: code.ErrorCorrection,
	}
}

func toQRCodeResponse(code *models.QRCode) dto.QRCodeResponse {
	return dto.QRCodeResponse{
		ID:              code.ID,
		BusinessID:      code.BusinessID,
		Label:           code.Label,
		TargetURL:       code.TargetURL,
		Size:            code.Size,
		ForegroundColor: code.ForegroundColor,
		BackgroundColor: code.BackgroundColor,
		ErrorCorrection: code.ErrorCorrection,
		ScansCount:      code.ScansCount,
		CreatedAt:       code.CreatedAt,
		UpdatedAt:       code.UpdatedAt,
	}
}
