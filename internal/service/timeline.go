package service

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	domainerrors "github.com/listenupapp/chapter-timeline/internal/errors"
	"github.com/listenupapp/chapter-timeline/internal/id"
	"github.com/listenupapp/chapter-timeline/internal/sponsor"
	"github.com/listenupapp/chapter-timeline/internal/timeline"
)

// State is the lifecycle stage of a video's timeline.
type State string

// Timeline states, in lifecycle order.
const (
	StateUnparsed  State = "unparsed"
	StateParsed    State = "parsed"
	StateMerged    State = "merged_with_sponsors"
	StateCompleted State = "completed"
	StateRefined   State = "refined"
)

// Snapshot is one published version of a video's timeline. Snapshots are
// immutable; the service hands out copies.
type Snapshot struct {
	VideoID           string             `json:"video_id"`
	Revision          string             `json:"revision"`
	State             State              `json:"state"`
	Segments          []timeline.Segment `json:"segments"`
	Duration          timeline.Bound     `json:"duration"`
	SponsorsAvailable bool               `json:"sponsors_available"`
	UpdatedAt         time.Time          `json:"updated_at"`
}

// ChaptersAvailable reports whether the snapshot has anything to navigate.
func (s Snapshot) ChaptersAvailable() bool {
	return len(s.Segments) > 0
}

func (s *Snapshot) clone() Snapshot {
	c := *s
	c.Segments = timeline.Clone(s.Segments)
	return c
}

// Committer persists published snapshots. Snapshots may be committed out of
// order under concurrency; Revision and UpdatedAt order them.
type Committer interface {
	Commit(ctx context.Context, snapshot Snapshot) error
}

// session holds one video's raw inputs. mu guards every field except current,
// which readers load without locking.
type session struct {
	mu         sync.Mutex
	videoID    string
	content    []timeline.Segment
	parsed     bool
	report     *timeline.SponsorReport
	duration   float64
	issuedSeq  uint64
	appliedSeq uint64
	current    atomic.Pointer[Snapshot]
}

// TimelineService owns the per-video timeline state machine. Each change to a
// raw input recomputes the timeline off to the side and publishes it with a
// single atomic swap, so readers never see a half-merged timeline.
type TimelineService struct {
	engine    *timeline.Engine
	sponsors  sponsor.Source
	committer Committer
	sessions  *SyncMap[string, *session]
	logger    *slog.Logger
	now       func() time.Time
}

// NewTimelineService creates a timeline service. sponsors and committer may be
// nil: without a source RefreshSponsors reports unavailable, without a
// committer snapshots are only kept in memory.
func NewTimelineService(
	engine *timeline.Engine,
	sponsors sponsor.Source,
	committer Committer,
	logger *slog.Logger,
) *TimelineService {
	return &TimelineService{
		engine:    engine,
		sponsors:  sponsors,
		committer: committer,
		sessions:  NewSyncMap[string, *session](),
		logger:    logger,
		now:       time.Now,
	}
}

// SetDescription parses a video description and recomputes the timeline.
// A description without chapters is not an error.
func (s *TimelineService) SetDescription(ctx context.Context, videoID, description string) (Snapshot, error) {
	if videoID == "" {
		return Snapshot{}, domainerrors.Validation("video id is required")
	}
	sess := s.session(videoID)

	sess.mu.Lock()
	sess.content = s.engine.ExtractChapters(description, timeline.Pending())
	sess.parsed = true
	snap, err := s.recompute(sess, false)
	sess.mu.Unlock()

	return s.finish(ctx, snap, err)
}

// SetSponsors applies a sponsor report supplied by the caller. It supersedes
// any fetch still in flight.
func (s *TimelineService) SetSponsors(ctx context.Context, videoID string, report timeline.SponsorReport) (Snapshot, error) {
	if videoID == "" {
		return Snapshot{}, domainerrors.Validation("video id is required")
	}
	report.VideoID = videoID
	report.Intervals = append([]timeline.Interval(nil), report.Intervals...)
	sess := s.session(videoID)

	sess.mu.Lock()
	sess.issuedSeq++
	sess.appliedSeq = sess.issuedSeq
	snap, err := s.applyReport(sess, report)
	sess.mu.Unlock()

	return s.finish(ctx, snap, err)
}

// RefreshSponsors fetches sponsor intervals from the configured source and
// merges them. The fetch runs without holding the session; a result older
// than one already applied is discarded, and a cancelled fetch applies
// nothing. When the source is unavailable the previous timeline stays current
// and an Unavailable error is returned with it.
func (s *TimelineService) RefreshSponsors(ctx context.Context, videoID string) (Snapshot, error) {
	if s.sponsors == nil {
		return Snapshot{}, domainerrors.Unavailable("no sponsor source configured")
	}
	if videoID == "" {
		return Snapshot{}, domainerrors.Validation("video id is required")
	}
	sess := s.session(videoID)

	sess.mu.Lock()
	sess.issuedSeq++
	seq := sess.issuedSeq
	sess.mu.Unlock()

	report, fetchErr := sponsor.Report(ctx, s.sponsors, videoID)
	if ctx.Err() != nil {
		s.logger.Debug("sponsor fetch cancelled", "video_id", videoID, "seq", seq)
		return s.currentOf(sess), ctx.Err()
	}

	sess.mu.Lock()
	if seq <= sess.appliedSeq {
		sess.mu.Unlock()
		s.logger.Debug("discarding stale sponsor fetch", "video_id", videoID, "seq", seq)
		return s.currentOf(sess), nil
	}
	sess.appliedSeq = seq

	if fetchErr != nil {
		sess.mu.Unlock()
		s.logger.Warn("sponsor data unavailable, keeping current timeline",
			"video_id", videoID,
			"error", fetchErr,
		)
		return s.currentOf(sess), domainerrors.Wrap(fetchErr, domainerrors.CodeUnavailable, "sponsor data unavailable")
	}

	snap, err := s.applyReport(sess, report)
	sess.mu.Unlock()

	return s.finish(ctx, snap, err)
}

// SetDuration records the authoritative duration. On a completed timeline
// only the last segment is adjusted; otherwise the timeline is recomputed.
func (s *TimelineService) SetDuration(ctx context.Context, videoID string, duration float64) (Snapshot, error) {
	if duration <= 0 {
		return Snapshot{}, domainerrors.Validationf("duration must be positive, got %v", duration)
	}
	if videoID == "" {
		return Snapshot{}, domainerrors.Validation("video id is required")
	}
	sess := s.session(videoID)

	sess.mu.Lock()
	sess.duration = duration
	snap, err := s.refine(sess)
	sess.mu.Unlock()

	return s.finish(ctx, snap, err)
}

// Current returns the latest published snapshot.
func (s *TimelineService) Current(videoID string) (Snapshot, error) {
	sess, ok := s.sessions.Load(videoID)
	if !ok {
		return Snapshot{}, domainerrors.NotFoundf("no timeline for video %s", videoID)
	}
	return s.currentOf(sess), nil
}

// Forget drops everything known about a video.
func (s *TimelineService) Forget(videoID string) error {
	if !s.sessions.Delete(videoID) {
		return domainerrors.NotFoundf("no timeline for video %s", videoID)
	}
	s.logger.Info("timeline forgotten", "video_id", videoID)
	return nil
}

// HasSponsorSource reports whether RefreshSponsors can reach a source.
func (s *TimelineService) HasSponsorSource() bool {
	return s.sponsors != nil
}

// Videos returns the IDs of all tracked videos.
func (s *TimelineService) Videos() []string {
	return s.sessions.Keys()
}

func (s *TimelineService) session(videoID string) *session {
	sess, _ := s.sessions.LoadOrCreate(videoID, func() *session {
		sess := &session{videoID: videoID}
		sess.current.Store(&Snapshot{VideoID: videoID, State: StateUnparsed, UpdatedAt: s.now()})
		return sess
	})
	return sess
}

func (s *TimelineService) currentOf(sess *session) Snapshot {
	return sess.current.Load().clone()
}

// applyReport stores a report and recomputes. Callers hold sess.mu.
func (s *TimelineService) applyReport(sess *session, report timeline.SponsorReport) (Snapshot, error) {
	if !report.Available {
		// An unavailable answer never replaces data we already have.
		if sess.report == nil {
			return s.recompute(sess, false)
		}
		return s.currentOf(sess), nil
	}
	sess.report = &report
	return s.recompute(sess, false)
}

// refine applies a new duration. Callers hold sess.mu.
func (s *TimelineService) refine(sess *session) (Snapshot, error) {
	prev := sess.current.Load()
	if (prev.State != StateCompleted && prev.State != StateRefined) || len(prev.Segments) == 0 {
		return s.recompute(sess, false)
	}

	last := prev.Segments[len(prev.Segments)-1]
	end := last.End.Or(0)
	// A sponsor stretched far past its reported end would hide content, so
	// that case gets a full recompute with generated filler.
	// Chapters trimmed by an earlier, shorter duration come back the same way.
	if sess.duration <= last.Start ||
		(last.Category == timeline.CategorySponsor && sess.duration-end >= s.engine.Tolerance()) ||
		hasChapterBetween(sess.content, last.Start, sess.duration) {
		return s.recompute(sess, true)
	}

	segments := timeline.Clone(prev.Segments)
	s.engine.UpdateDuration(segments, sess.duration)
	return s.publish(sess, StateRefined, segments)
}

// hasChapterBetween reports whether a chapter starts after from and before to.
func hasChapterBetween(content []timeline.Segment, from, to float64) bool {
	for _, c := range content {
		if c.Start > from && c.Start < to {
			return true
		}
	}
	return false
}

// recompute derives the timeline from the raw inputs. Callers hold sess.mu.
func (s *TimelineService) recompute(sess *session, refined bool) (Snapshot, error) {
	var (
		segments []timeline.Segment
		state    = StateUnparsed
		err      error
	)

	hasSponsors := sess.report != nil && sess.report.Available
	switch {
	case hasSponsors && len(sess.content) > 0:
		segments, err = s.engine.MergeSponsorSegments(sess.content, *sess.report)
		state = StateMerged
	case hasSponsors && sess.duration > 0:
		segments, err = s.engine.Generate(sess.report.Intervals, sess.duration)
		state = StateMerged
	case hasSponsors:
		segments, err = s.engine.Merge(nil, sess.report.Intervals)
		state = StateMerged
	case len(sess.content) > 0:
		segments, err = s.engine.Merge(sess.content, nil)
		state = StateParsed
	case sess.parsed:
		state = StateParsed
	}
	if err != nil {
		return s.currentOf(sess), err
	}

	if sess.duration > 0 && len(segments) > 0 {
		segments, err = s.engine.Complete(segments, sess.duration)
		if err != nil {
			return s.currentOf(sess), domainerrors.Wrap(err, domainerrors.CodeInvariant, "completed timeline rejected")
		}
		state = StateCompleted
		prev := sess.current.Load().State
		if refined || prev == StateRefined {
			state = StateRefined
		}
	}

	return s.publish(sess, state, segments)
}

// publish swaps in a new snapshot. Callers hold sess.mu.
func (s *TimelineService) publish(sess *session, state State, segments []timeline.Segment) (Snapshot, error) {
	revision, err := id.Revision()
	if err != nil {
		return s.currentOf(sess), domainerrors.Wrap(err, domainerrors.CodeInternal, "generate revision")
	}

	duration := timeline.Pending()
	if sess.duration > 0 {
		duration = timeline.Known(sess.duration)
	}

	snap := &Snapshot{
		VideoID:           sess.videoID,
		Revision:          revision,
		State:             state,
		Segments:          segments,
		Duration:          duration,
		SponsorsAvailable: sess.report != nil && sess.report.Available,
		UpdatedAt:         s.now(),
	}
	sess.current.Store(snap)

	s.logger.Info("timeline updated",
		"video_id", sess.videoID,
		"state", state,
		"segments", len(segments),
		"revision", revision,
	)
	return snap.clone(), nil
}

// finish commits a freshly published snapshot. Commit failures are logged;
// the snapshot stays current in memory either way.
func (s *TimelineService) finish(ctx context.Context, snap Snapshot, err error) (Snapshot, error) {
	if err != nil {
		if errors.Is(err, domainerrors.ErrInvariant) {
			s.logger.Error("timeline rejected", "video_id", snap.VideoID, "error", err)
		}
		return snap, err
	}
	if s.committer == nil {
		return snap, nil
	}
	if cerr := s.committer.Commit(ctx, snap); cerr != nil {
		s.logger.Warn("timeline commit failed",
			"video_id", snap.VideoID,
			"revision", snap.Revision,
			"error", cerr,
		)
	}
	return snap, nil
}
