package core

import (
	"context"
	"fmt"

	"github.com/driveframe/storyteller/internal/logging"
	"github.com/driveframe/storyteller/model"
	"github.com/driveframe/storyteller/planning"
	"github.com/driveframe/storyteller/story"
)

// CloseToJunctionTeller turns scan outcomes into published story state:
// it creates the CloseToJunction record when proximity appears, refreshes
// it while proximity persists, and clears it when proximity disappears.
// Enter/exit transitions surface as events on the story store.
type CloseToJunctionTeller struct {
	feed    *planning.Feed
	reader  *planning.Reader
	scanner *Scanner
	stories *story.Store
	log     logging.Logger
}

// NewCloseToJunctionTeller constructs the teller. Init must run before the
// first Update. log may be nil.
func NewCloseToJunctionTeller(feed *planning.Feed, scanner *Scanner, stories *story.Store, log logging.Logger) *CloseToJunctionTeller {
	if log == nil {
		log = logging.Noop()
	}
	return &CloseToJunctionTeller{
		feed:    feed,
		scanner: scanner,
		stories: stories,
		log:     log,
	}
}

// Name identifies the teller in logs, metrics, and spans.
func (t *CloseToJunctionTeller) Name() string { return "close_to_junction" }

// Init registers the trajectory subscription.
func (t *CloseToJunctionTeller) Init() error {
	if t.feed == nil {
		return fmt.Errorf("core: teller %q has no trajectory feed", t.Name())
	}
	if t.scanner == nil {
		return fmt.Errorf("core: teller %q has no scanner", t.Name())
	}
	if t.stories == nil {
		return fmt.Errorf("core: teller %q has no story store", t.Name())
	}
	t.reader = t.feed.NewReader()
	return nil
}

// Update runs once per cycle: scan the latest trajectory and reconcile the
// story record.
//
// A missing or empty trajectory yields ErrTrajectoryNotReady and leaves
// existing state untouched. Map-index failures propagate unchanged.
func (t *CloseToJunctionTeller) Update(ctx context.Context) error {
	if t.reader == nil {
		return fmt.Errorf("core: teller %q used before Init", t.Name())
	}

	trajectory, ok := t.reader.Latest()
	if !ok || trajectory.Empty() {
		return ErrTrajectoryNotReady
	}

	outcome, err := t.scanner.Scan(trajectory)
	if err != nil {
		return err
	}

	if outcome.Distance >= 0 {
		t.stories.SetCloseToJunction(model.CloseToJunction{
			ID:       outcome.JunctionID,
			Kind:     outcome.Kind,
			Distance: outcome.Distance,
		})
		t.log.Debug(ctx, "close to junction",
			logging.String("junction_id", outcome.JunctionID),
			logging.String("kind", outcome.Kind.String()),
			logging.Any("distance", outcome.Distance),
		)
	} else {
		t.stories.ClearCloseToJunction()
	}
	return nil
}
