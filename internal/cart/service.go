package cart

import (
	"context"
	"strings"
	"time"

	"github.com/go-faster/errors"
	"github.com/rs/zerolog"
	"github.com/wichananm65/shop-checkout/internal/apperr"
	"github.com/wichananm65/shop-checkout/internal/catalog"
	"github.com/wichananm65/shop-checkout/internal/coupon"
	"github.com/wichananm65/shop-checkout/internal/logging"
	"github.com/wichananm65/shop-checkout/internal/metrics"
)

var (
	ErrNotOwner            = apperr.Authorization("cart belongs to another customer")
	ErrInvalidQuantity     = apperr.Validation("quantity must be at least 1")
	ErrMissingEntry        = apperr.Validation("entry_id is required")
	ErrEntryUnavailable    = apperr.Validation("catalog entry is not available")
	ErrMissingSession      = apperr.Validation("session id is required")
	ErrInvalidCoupon       = apperr.InvalidCoupon("coupon code is invalid or expired")
	ErrCouponNotApplicable = apperr.InvalidCoupon("coupon does not apply to any item in the cart")
)

// Service orchestrates cart operations for one customer at a time. Every
// call names the customer and the cart explicitly and is refused when the
// cart belongs to someone else.
type Service struct {
	repo    Repository
	entries catalog.Repository
	coupons coupon.Repository
	now     func() time.Time
	log     zerolog.Logger
	metrics *metrics.Metrics
}

func NewService(repo Repository, entries catalog.Repository, coupons coupon.Repository) *Service {
	return &Service{repo: repo, entries: entries, coupons: coupons, now: time.Now, log: zerolog.Nop()}
}

func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

func (s *Service) WithLogger(log zerolog.Logger) *Service {
	s.log = log
	return s
}

func (s *Service) WithMetrics(m *metrics.Metrics) *Service {
	s.metrics = m
	return s
}

// Open returns the active cart of the session, creating an empty one the
// first time the session is seen.
func (s *Service) Open(ctx context.Context, customerID int64, sessionID string) (Cart, error) {
	if strings.TrimSpace(sessionID) == "" {
		return Cart{}, ErrMissingSession
	}
	c, err := s.repo.FindActive(ctx, customerID, sessionID)
	if err == nil {
		return c, nil
	}
	if !errors.Is(err, ErrCartNotFound) {
		return Cart{}, err
	}
	c, err = s.repo.Create(ctx, customerID, sessionID)
	if errors.Is(err, ErrActiveCartExists) {
		// lost the race to a concurrent Open of the same session
		return s.repo.FindActive(ctx, customerID, sessionID)
	}
	if err != nil {
		return Cart{}, err
	}
	logging.FromContext(ctx, &s.log).Debug().Int64("customer_id", customerID).Int64("cart_id", c.ID).Msg("cart opened")
	return c, nil
}

// AddOrUpdate puts quantity units of entryID in the cart. Adding an entry
// that already has a line replaces that line's quantity.
func (s *Service) AddOrUpdate(ctx context.Context, customerID, cartID, entryID int64, quantity int) (Line, error) {
	if err := s.checkLine(ctx, entryID, quantity); err != nil {
		return Line{}, err
	}
	if _, err := s.owned(ctx, customerID, cartID); err != nil {
		return Line{}, err
	}
	return s.repo.UpsertLine(ctx, cartID, entryID, quantity)
}

func (s *Service) SetQuantity(ctx context.Context, customerID, cartID, entryID int64, quantity int) (Line, error) {
	if err := s.checkLine(ctx, entryID, quantity); err != nil {
		return Line{}, err
	}
	if _, err := s.owned(ctx, customerID, cartID); err != nil {
		return Line{}, err
	}
	return s.repo.UpdateLineQuantity(ctx, cartID, entryID, quantity)
}

func (s *Service) RemoveLine(ctx context.Context, customerID, cartID, lineID int64) error {
	if _, err := s.owned(ctx, customerID, cartID); err != nil {
		return err
	}
	return s.repo.DeleteLine(ctx, cartID, lineID)
}

func (s *Service) Total(ctx context.Context, customerID, cartID int64) (int64, error) {
	c, err := s.owned(ctx, customerID, cartID)
	if err != nil {
		return 0, err
	}
	entries, err := s.Entries(ctx, c)
	if err != nil {
		return 0, err
	}
	return Total(c, entries, s.now())
}

// ApplyCoupon attaches the coupon named by code, replacing any coupon the
// cart already had. The coupon itself is not consumed.
func (s *Service) ApplyCoupon(ctx context.Context, customerID, cartID int64, code string) (coupon.Coupon, error) {
	c, err := s.owned(ctx, customerID, cartID)
	if err != nil {
		return coupon.Coupon{}, err
	}

	cp, err := s.redeemable(ctx, c, strings.TrimSpace(code))
	if err != nil {
		s.metrics.CouponApplied("rejected")
		logging.FromContext(ctx, &s.log).Info().Int64("cart_id", cartID).Str("code", code).Err(err).Msg("coupon rejected")
		return coupon.Coupon{}, err
	}
	if err := s.repo.SetCoupon(ctx, cartID, cp.ID); err != nil {
		return coupon.Coupon{}, err
	}
	s.metrics.CouponApplied("applied")
	logging.FromContext(ctx, &s.log).Info().Int64("cart_id", cartID).Str("code", cp.Code).Msg("coupon applied")
	return cp, nil
}

func (s *Service) TotalWithCoupon(ctx context.Context, customerID, cartID int64) (int64, error) {
	sum, err := s.Summary(ctx, customerID, cartID)
	if err != nil {
		return 0, err
	}
	return sum.TotalWithCoupon, nil
}

func (s *Service) redeemable(ctx context.Context, c Cart, code string) (coupon.Coupon, error) {
	if code == "" {
		return coupon.Coupon{}, ErrInvalidCoupon
	}
	cp, err := s.coupons.GetByCode(ctx, code)
	if err != nil {
		if errors.Is(err, coupon.ErrNotFound) {
			return coupon.Coupon{}, ErrInvalidCoupon
		}
		return coupon.Coupon{}, err
	}
	if !cp.IsRedeemable(s.now()) {
		return coupon.Coupon{}, ErrInvalidCoupon
	}
	if !Qualifies(c, cp) {
		return coupon.Coupon{}, ErrCouponNotApplicable
	}
	return cp, nil
}

// Entries loads the catalog entries referenced by c. Entries that no longer
// exist are absent from the result.
func (s *Service) Entries(ctx context.Context, c Cart) (map[int64]catalog.Entry, error) {
	if c.IsEmpty() {
		return map[int64]catalog.Entry{}, nil
	}
	return s.entries.ListByIDs(ctx, c.EntryIDs())
}

// Coupon resolves the coupon attached to c. A coupon removed since it was
// applied yields nil.
func (s *Service) Coupon(ctx context.Context, c Cart) (*coupon.Coupon, error) {
	if c.CouponID == nil {
		return nil, nil
	}
	cp, err := s.coupons.GetByID(ctx, *c.CouponID)
	if err != nil {
		if errors.Is(err, coupon.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &cp, nil
}

func (s *Service) owned(ctx context.Context, customerID, cartID int64) (Cart, error) {
	c, err := s.repo.Get(ctx, cartID)
	if err != nil {
		return Cart{}, err
	}
	if c.CustomerID != customerID {
		return Cart{}, ErrNotOwner
	}
	return c, nil
}

func (s *Service) checkLine(ctx context.Context, entryID int64, quantity int) error {
	if entryID <= 0 {
		return ErrMissingEntry
	}
	if quantity < 1 {
		return ErrInvalidQuantity
	}
	e, err := s.entries.GetByID(ctx, entryID)
	if err != nil {
		return err
	}
	if !e.Available {
		return ErrEntryUnavailable
	}
	return nil
}
