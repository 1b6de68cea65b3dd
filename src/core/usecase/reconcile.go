package usecase

import (
	"context"
	"log/slog"
	"sort"

	"goblet/src/core/domain"
	"goblet/src/core/ports"
)

// ReconcilerService recomputes team totals and house aggregate scores from
// the round-result log and corrects drift. The imperative increment path
// stays canonical during normal operation; this pass is the admin-triggered
// correction job for when the independently-maintained counters diverge.
type ReconcilerService struct {
	repo ports.TournamentRepository
	log  *slog.Logger
}

func NewReconcilerService(repo ports.TournamentRepository, log *slog.Logger) *ReconcilerService {
	return &ReconcilerService{repo: repo, log: log}
}

// TeamDrift records one corrected team total.
type TeamDrift struct {
	TeamID   int64  `json:"team_id"`
	Name     string `json:"name"`
	Stored   int    `json:"stored"`
	Computed int    `json:"computed"`
}

// HouseDrift records one corrected house aggregate.
type HouseDrift struct {
	House    domain.House `json:"house"`
	Stored   int          `json:"stored"`
	Computed int          `json:"computed"`
}

// ReconcileReport summarizes a reconciliation pass.
type ReconcileReport struct {
	ResultsScanned int          `json:"results_scanned"`
	TeamsCorrected []TeamDrift  `json:"teams_corrected"`
	HousesCorrected []HouseDrift `json:"houses_corrected"`
}

// Reconcile derives every team's total from the result log (paired entries
// credit both teams), writes back totals that drifted, then does the same for
// house aggregate scores. Admin-only.
func (s *ReconcilerService) Reconcile(ctx context.Context, actor domain.Actor) (*ReconcileReport, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}

	stored, err := s.repo.ListAllResults(ctx)
	if err != nil {
		return nil, err
	}

	computed := make(map[int64]int)
	for _, r := range stored {
		for _, id := range r.Entry.Teams() {
			computed[id] += r.Entry.Points
		}
	}

	teams, err := s.repo.ListTeams(ctx, ports.TeamFilter{IncludeEliminated: true})
	if err != nil {
		return nil, err
	}

	report := &ReconcileReport{
		ResultsScanned:  len(stored),
		TeamsCorrected:  []TeamDrift{},
		HousesCorrected: []HouseDrift{},
	}

	housePoints := make(map[domain.House]int)
	for _, t := range teams {
		want := computed[t.ID]
		housePoints[t.House] += want
		if t.TotalScore != want {
			if err := s.repo.SetTeamTotal(ctx, t.ID, want); err != nil {
				return nil, err
			}
			report.TeamsCorrected = append(report.TeamsCorrected, TeamDrift{
				TeamID: t.ID, Name: t.Name, Stored: t.TotalScore, Computed: want,
			})
		}
	}

	standings, err := s.repo.ListStandings(ctx)
	if err != nil {
		return nil, err
	}
	storedPoints := make(map[domain.House]int, len(standings))
	for _, st := range standings {
		storedPoints[st.House] = st.Points
	}

	// Cover houses with teams but no standing row yet: SetStandingPoints is
	// an upsert, so correcting them also seeds the missing row.
	houses := make([]domain.House, 0, len(storedPoints)+len(housePoints))
	seen := make(map[domain.House]bool)
	for _, st := range standings {
		houses = append(houses, st.House)
		seen[st.House] = true
	}
	for house := range housePoints {
		if !seen[house] {
			houses = append(houses, house)
		}
	}
	sort.Slice(houses, func(i, j int) bool { return houses[i] < houses[j] })

	for _, house := range houses {
		want := housePoints[house]
		points, exists := storedPoints[house]
		if exists && points == want {
			continue
		}
		if !exists && want == 0 {
			continue
		}
		if err := s.repo.SetStandingPoints(ctx, house, want); err != nil {
			return nil, err
		}
		report.HousesCorrected = append(report.HousesCorrected, HouseDrift{
			House: house, Stored: points, Computed: want,
		})
	}

	recordActivity(ctx, s.repo, s.log, domain.ActivityEntry{
		Message:    "reconciliation pass completed",
		ActorEmail: actor.Email,
		Meta: map[string]any{
			"teams_corrected":  len(report.TeamsCorrected),
			"houses_corrected": len(report.HousesCorrected),
		},
	})
	return report, nil
}
