package admin

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/wichananm65/cod-storefront/internal/apperror"
	"github.com/wichananm65/cod-storefront/internal/offer"
	"github.com/wichananm65/cod-storefront/internal/product"
)

const (
	SnapshotExt     = ".xshop"
	SnapshotVersion = "1.0"
)

// Snapshot is the export file of the product catalog and its offers.
type Snapshot struct {
	Products   []product.Product `json:"products"`
	Offers     []offer.Offer     `json:"offers"`
	ExportDate time.Time         `json:"exportDate"`
	Version    string            `json:"version"`
}

// SnapshotFilename names an export taken at t.
func SnapshotFilename(t time.Time) string {
	return "products-" + t.Format("2006-01-02") + SnapshotExt
}

// Export builds a snapshot from the held listings.
func (s *Sync) Export() Snapshot {
	return Snapshot{
		Products:   s.heldProducts.all(),
		Offers:     s.heldOffers.all(),
		ExportDate: s.now(),
		Version:    SnapshotVersion,
	}
}

// ParseSnapshot checks the file name and the document shape. The products
// array is required; offers are optional. Products without an id or a
// creation time get one.
func ParseSnapshot(filename string, raw []byte, now time.Time, newID func() string) (Snapshot, error) {
	if !strings.EqualFold(filepath.Ext(filename), SnapshotExt) {
		return Snapshot{}, &apperror.FormatError{Reason: "expected a " + SnapshotExt + " file"}
	}

	var doc map[string]json.RawMessage
	if err := json.Unmarshal(raw, &doc); err != nil {
		return Snapshot{}, &apperror.FormatError{Reason: "not a JSON object"}
	}
	rawProducts, ok := doc["products"]
	if !ok || !isArray(rawProducts) {
		return Snapshot{}, &apperror.FormatError{Reason: "products must be an array"}
	}

	var snap Snapshot
	if err := json.Unmarshal(rawProducts, &snap.Products); err != nil {
		return Snapshot{}, &apperror.FormatError{Reason: "products: " + err.Error()}
	}
	if rawOffers, ok := doc["offers"]; ok && !isNull(rawOffers) {
		if !isArray(rawOffers) {
			return Snapshot{}, &apperror.FormatError{Reason: "offers must be an array"}
		}
		if err := json.Unmarshal(rawOffers, &snap.Offers); err != nil {
			return Snapshot{}, &apperror.FormatError{Reason: "offers: " + err.Error()}
		}
	}
	if v, ok := doc["version"]; ok {
		_ = json.Unmarshal(v, &snap.Version)
	}

	for i := range snap.Products {
		p := &snap.Products[i]
		if fields := product.Validate(*p); len(fields) > 0 {
			return Snapshot{}, &apperror.FormatError{Reason: fmt.Sprintf("product %d: %s", i, (&apperror.ValidationError{Fields: fields}).Error())}
		}
		if p.ID == "" {
			p.ID = newID()
		}
		if p.CreatedAt.IsZero() {
			p.CreatedAt = now
		}
	}
	for i := range snap.Offers {
		o := &snap.Offers[i]
		if fields := offer.Validate(*o); len(fields) > 0 {
			return Snapshot{}, &apperror.FormatError{Reason: fmt.Sprintf("offer %d: %s", i, (&apperror.ValidationError{Fields: fields}).Error())}
		}
		if o.ID == "" {
			o.ID = newID()
		}
		if o.CreatedAt.IsZero() {
			o.CreatedAt = now
		}
	}
	return snap, nil
}

// Import replaces the stored catalog with the snapshot in filename. Offers
// are replaced only when the snapshot carries them. When the offer reset
// fails the previous products are written back, so a failed import leaves
// the catalog as it was. The held listings are reloaded from the stores on
// every path that reached them.
func (s *Sync) Import(ctx context.Context, filename string, raw []byte) (Snapshot, error) {
	const op = "admin.Sync.Import"
	log := slog.With("op", op, "file", filename)

	snap, err := ParseSnapshot(filename, raw, s.now(), s.newID)
	if err != nil {
		log.Warn("rejected snapshot", "err", err)
		return Snapshot{}, err
	}

	previous, err := s.listProducts(ctx)
	if err != nil {
		return Snapshot{}, apperror.Store(op, err)
	}
	defer s.reload(ctx, log)

	if err := s.resetProducts(ctx, snap.Products); err != nil {
		return Snapshot{}, apperror.Store(op, err)
	}
	if snap.Offers != nil {
		if err := s.resetOffers(ctx, snap.Offers); err != nil {
			if rbErr := s.resetProducts(context.WithoutCancel(ctx), previous); rbErr != nil {
				log.Error("failed to restore products after offer reset failed", "err", rbErr)
			}
			return Snapshot{}, apperror.Store(op, err)
		}
	}

	log.Info("snapshot imported", "products", len(snap.Products), "offers", len(snap.Offers))
	return snap, nil
}

func (s *Sync) listProducts(ctx context.Context) ([]product.Product, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	return s.products.List(ctx)
}

func (s *Sync) resetProducts(ctx context.Context, products []product.Product) error {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	return s.products.Reset(ctx, products)
}

func (s *Sync) resetOffers(ctx context.Context, offers []offer.Offer) error {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	return s.offers.Reset(ctx, offers)
}

func (s *Sync) reload(ctx context.Context, log *slog.Logger) {
	if err := s.Load(context.WithoutCancel(ctx)); err != nil {
		log.Warn("failed to reload admin listings", "err", err)
	}
}

func isArray(raw json.RawMessage) bool {
	return bytes.HasPrefix(bytes.TrimSpace(raw), []byte("["))
}

func isNull(raw json.RawMessage) bool {
	return bytes.Equal(bytes.TrimSpace(raw), []byte("null"))
}
