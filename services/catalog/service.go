package catalog

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"strings"

	"numicat-backend/lib/auctions"
	"numicat-backend/lib/fetch"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

var tracer = otel.Tracer("services/catalog")

// Service imports auction lots into the catalog store and keeps the
// pending-lot bookkeeping straight across retries.
type Service struct {
	registry *auctions.Registry
	store    Store
}

func NewService(client *fetch.Client, database *sql.DB) Service {
	return Service{
		registry: auctions.NewRegistry(client),
		store:    NewStore(database),
	}
}

func (s Service) Registry() *auctions.Registry {
	return s.registry
}

func (s Service) Store() Store {
	return s.store
}

// FindSite resolves a site label ("Wolmar") or hostname
// ("www.wolmar.ru") to its parser.
func (s Service) FindSite(name string) (auctions.Parser, bool) {
	for _, p := range s.registry.Sites() {
		if strings.EqualFold(p.Name(), name) {
			return p, true
		}
		for _, hostname := range p.Hostnames() {
			if strings.EqualFold(hostname, name) {
				return p, true
			}
		}
	}
	return nil, false
}

// ImportLot imports one lot url. A lot whose bidding is still open is
// recorded as pending for a later retry; a pulled lot is recorded as
// skipped so reimports stop trying. Both still return the parse error.
func (s Service) ImportLot(ctx context.Context, rawURL string) (auctions.Item, error) {
	ctx, span := tracer.Start(ctx, "ImportLot")
	defer span.End()
	span.SetAttributes(attribute.String("url", rawURL))

	item, err := s.registry.ImportLot(ctx, rawURL)
	switch {
	case err == nil:
		err = s.store.SaveItem(ctx, rawURL, item)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "failed to save lot")
			return auctions.Item{}, err
		}
		return item, nil
	case errors.Is(err, auctions.ErrNotDoneYet):
		if markErr := s.store.MarkPending(ctx, rawURL, err.Error()); markErr != nil {
			return auctions.Item{}, markErr
		}
		return auctions.Item{}, err
	case errors.Is(err, auctions.ErrCanceled):
		if markErr := s.store.MarkSkipped(ctx, rawURL, err.Error()); markErr != nil {
			return auctions.Item{}, markErr
		}
		return auctions.Item{}, err
	default:
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to import lot")
		return auctions.Item{}, err
	}
}

// ScanReport counts the per-lot outcomes of one scan.
type ScanReport struct {
	Imported int
	Pending  int
	Skipped  int
	Failed   int
}

// ScanAuction imports every closed lot of one auction+category on a
// site. Individual lot failures are counted, never fatal; only store
// failures and a canceled ctx abort the scan.
func (s Service) ScanAuction(ctx context.Context, site auctions.Parser, auction int, category string) (ScanReport, error) {
	ctx, span := tracer.Start(ctx, "ScanAuction")
	defer span.End()
	span.SetAttributes(
		attribute.String("site", site.Name()),
		attribute.Int("auction", auction),
		attribute.String("category", category),
	)

	categoryIndex, err := auctions.MatchCategory(site, category)
	if err != nil {
		return ScanReport{}, err
	}

	var report ScanReport
	err = s.registry.ScanAuction(ctx, site, auction, categoryIndex,
		func(entry auctions.ListingEntry, item auctions.Item, err error) error {
			switch {
			case err == nil:
				if saveErr := s.store.SaveItem(ctx, entry.URL, item); saveErr != nil {
					return saveErr
				}
				report.Imported++
			case errors.Is(err, auctions.ErrNotDoneYet):
				if markErr := s.store.MarkPending(ctx, entry.URL, err.Error()); markErr != nil {
					return markErr
				}
				report.Pending++
			case errors.Is(err, auctions.ErrCanceled):
				if markErr := s.store.MarkSkipped(ctx, entry.URL, err.Error()); markErr != nil {
					return markErr
				}
				report.Skipped++
			default:
				slog.WarnContext(ctx, "failed to import lot",
					"url", entry.URL, "err", err)
				report.Failed++
			}
			return nil
		})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "scan aborted")
		return report, err
	}

	span.SetAttributes(
		attribute.Int("imported", report.Imported),
		attribute.Int("pending", report.Pending),
	)
	return report, nil
}

// RetryPending reimports every lot still marked open. Lots that closed
// since the last attempt move into the catalog, the rest stay pending.
func (s Service) RetryPending(ctx context.Context) (ScanReport, error) {
	ctx, span := tracer.Start(ctx, "RetryPending")
	defer span.End()

	pending, err := s.store.ListPending(ctx)
	if err != nil {
		return ScanReport{}, err
	}
	span.SetAttributes(attribute.Int("pending", len(pending)))

	var report ScanReport
	for _, lot := range pending {
		if err := ctx.Err(); err != nil {
			return report, err
		}

		_, err := s.ImportLot(ctx, lot.URL)
		switch {
		case err == nil:
			report.Imported++
		case errors.Is(err, auctions.ErrNotDoneYet):
			report.Pending++
		case errors.Is(err, auctions.ErrCanceled):
			report.Skipped++
		default:
			slog.WarnContext(ctx, "failed to retry lot",
				"url", lot.URL, "err", err)
			report.Failed++
		}
	}
	return report, nil
}
