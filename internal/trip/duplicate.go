// Package trip implements multi-store trip operations, chiefly duplication
// of a trip aggregate into a fresh trip.
package trip

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/sethvargo/go-retry"
	"golang.org/x/sync/errgroup"

	"github.com/fittra/trailstack/internal/blob"
	"github.com/fittra/trailstack/internal/metrics"
	"github.com/fittra/trailstack/internal/model"
	"github.com/fittra/trailstack/internal/store"
)

// ErrNotFound is returned when the source trip does not exist.
var ErrNotFound = errors.New("trip not found")

// CopySuffix is appended to the duplicated trip's title.
const CopySuffix = " (Copy)"

const (
	copyRetryAttempts = 3
	copyRetryBase     = 200 * time.Millisecond
)

// Duplicator deep-copies a trip aggregate: the trip header, participants,
// itinerary, gear checklist, emergency contacts, and documents.
type Duplicator struct {
	db           *sql.DB
	trips        *store.TripStore
	participants *store.ParticipantStore
	itinerary    *store.ItineraryStore
	gear         *store.GearStore
	contacts     *store.ContactStore
	documents    *store.DocumentStore
	blobs        blob.Store
	metrics      *metrics.Metrics
	logger       *slog.Logger
	now          func() time.Time
}

func NewDuplicator(
	db *sql.DB,
	trips *store.TripStore,
	participants *store.ParticipantStore,
	itinerary *store.ItineraryStore,
	gear *store.GearStore,
	contacts *store.ContactStore,
	documents *store.DocumentStore,
	blobs blob.Store,
	m *metrics.Metrics,
	logger *slog.Logger,
) *Duplicator {
	return &Duplicator{
		db:           db,
		trips:        trips,
		participants: participants,
		itinerary:    itinerary,
		gear:         gear,
		contacts:     contacts,
		documents:    documents,
		blobs:        blobs,
		metrics:      m,
		logger:       logger,
		now:          time.Now,
	}
}

// Duplicate copies the trip with the given id into a new trip and returns
// the new trip's id.
//
// The header and the required child collections (participants, itinerary,
// gear checklist, emergency contacts) are written in one transaction, so a
// failure there leaves no partial trip behind. Gear checklist copies always
// start out Pending: packing progress belongs to the source trip.
//
// Documents are copied afterwards, best-effort per item: a blob copy that
// keeps failing after retries is logged and skipped while its siblings
// continue, and only the rows whose blobs copied are inserted.
func (d *Duplicator) Duplicate(ctx context.Context, tripID int64) (int64, error) {
	src, err := d.trips.GetByID(tripID)
	if err != nil {
		d.metrics.TripDuplications.WithLabelValues("error").Inc()
		return 0, err
	}
	if src == nil {
		d.metrics.TripDuplications.WithLabelValues("not_found").Inc()
		return 0, ErrNotFound
	}

	// Read the five child collections concurrently. Any failure aborts
	// before a single write happens.
	var (
		participants []model.Participant
		itinerary    []model.ItineraryItem
		gearItems    []model.TripGearItem
		contacts     []model.EmergencyContact
		documents    []model.TripDocument
	)
	g, _ := errgroup.WithContext(ctx)
	g.Go(func() (err error) { participants, err = d.participants.ListByTrip(tripID); return })
	g.Go(func() (err error) { itinerary, err = d.itinerary.ListByTrip(tripID); return })
	g.Go(func() (err error) { gearItems, err = d.gear.ListItemsByTrip(tripID); return })
	g.Go(func() (err error) { contacts, err = d.contacts.ListByTrip(tripID); return })
	g.Go(func() (err error) { documents, err = d.documents.ListByTrip(tripID); return })
	if err := g.Wait(); err != nil {
		d.metrics.TripDuplications.WithLabelValues("error").Inc()
		return 0, fmt.Errorf("read trip aggregate: %w", err)
	}

	newID, err := d.copyCore(src, participants, itinerary, gearItems, contacts)
	if err != nil {
		d.metrics.TripDuplications.WithLabelValues("error").Inc()
		return 0, err
	}

	if err := d.copyDocuments(ctx, newID, documents); err != nil {
		// The trip itself exists at this point; surface the error but
		// leave the new trip in place.
		d.metrics.TripDuplications.WithLabelValues("partial").Inc()
		return newID, err
	}

	d.metrics.TripDuplications.WithLabelValues("ok").Inc()
	d.logger.Info("trip duplicated",
		"source_id", tripID,
		"new_id", newID,
		"participants", len(participants),
		"itinerary", len(itinerary),
		"gear", len(gearItems),
		"contacts", len(contacts),
		"documents", len(documents),
	)
	return newID, nil
}

// copyCore inserts the new trip header and the required child collections
// in a single transaction.
func (d *Duplicator) copyCore(
	src *model.Trip,
	participants []model.Participant,
	itinerary []model.ItineraryItem,
	gearItems []model.TripGearItem,
	contacts []model.EmergencyContact,
) (int64, error) {
	tx, err := d.db.Begin()
	if err != nil {
		return 0, fmt.Errorf("begin duplicate: %w", err)
	}
	defer tx.Rollback()

	result, err := tx.Exec(
		`INSERT INTO trips (title, location, start_date, end_date, last_edited_by) VALUES (?, ?, ?, ?, ?)`,
		src.Title+CopySuffix, src.Location, src.StartDate.UTC(), src.EndDate.UTC(), src.LastEditedBy,
	)
	if err != nil {
		return 0, fmt.Errorf("insert trip copy: %w", err)
	}
	newID, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("last insert id: %w", err)
	}

	if err := d.participants.InsertCopiesTx(tx, newID, participants); err != nil {
		return 0, err
	}
	if err := d.itinerary.InsertCopiesTx(tx, newID, itinerary); err != nil {
		return 0, err
	}
	if err := d.gear.InsertItemCopiesTx(tx, newID, gearItems); err != nil {
		return 0, err
	}
	if err := d.contacts.InsertCopiesTx(tx, newID, contacts); err != nil {
		return 0, err
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit duplicate: %w", err)
	}
	return newID, nil
}

// copyDocuments copies each source document's blob to a key under the new
// trip, skipping documents whose copies fail, then inserts the surviving
// rows in one batch.
func (d *Duplicator) copyDocuments(ctx context.Context, newTripID int64, documents []model.TripDocument) error {
	var copied []model.TripDocument
	for _, doc := range documents {
		dstKey := DocumentKey(newTripID, d.now(), doc.Name)

		backoff := retry.WithMaxRetries(copyRetryAttempts, retry.NewExponential(copyRetryBase))
		err := retry.Do(ctx, backoff, func(ctx context.Context) error {
			if err := d.blobs.Copy(ctx, doc.FilePath, dstKey); err != nil {
				return retry.RetryableError(err)
			}
			return nil
		})
		if err != nil {
			d.metrics.DocumentCopySkipped.Inc()
			d.logger.Warn("skipping document during duplication",
				"document_id", doc.ID, "key", doc.FilePath, "error", err)
			continue
		}

		copied = append(copied, model.TripDocument{Name: doc.Name, FilePath: dstKey})
	}

	if err := d.documents.InsertBatch(newTripID, copied); err != nil {
		return fmt.Errorf("insert document copies: %w", err)
	}
	return nil
}

// DocumentKey builds the blob key for a trip document: scoped by trip id
// with a timestamp-prefixed file name so repeated uploads never collide.
func DocumentKey(tripID int64, ts time.Time, name string) string {
	return fmt.Sprintf("trips/%d/%d-%s", tripID, ts.UnixMilli(), name)
}
