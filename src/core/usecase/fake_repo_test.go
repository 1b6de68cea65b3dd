package usecase

import (
	"context"
	"sort"
	"sync"
	"time"

	"goblet/src/core/domain"
	"goblet/src/core/ports"
)

// fakeRepo is an in-memory ports.TournamentRepository for service tests.
// Individual calls can be made to fail via the err* fields; deltaFailOn
// fails the Nth ApplyScoreDelta call (1-based) for partial-batch tests.
type fakeRepo struct {
	mu sync.Mutex

	teams     map[int64]*domain.Team
	byName    map[string]int64
	nextTeam  int64
	locks     map[string]bool
	rounds    map[string]*domain.Round
	results   map[string][]domain.ResultEntry
	standings map[domain.House]*domain.HouseStanding
	potions   map[int64]*domain.PotionRecipe
	potionRef map[int64]int // potionID -> referencing team count
	nextPot   int64
	activity  []domain.ActivityEntry

	deltaCalls  int
	deltaFailOn int
	deltaErr    error

	errUpsert   error
	errQuaffles error
	errActivity error
	errLock     error
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		teams:     make(map[int64]*domain.Team),
		byName:    make(map[string]int64),
		locks:     make(map[string]bool),
		rounds:    make(map[string]*domain.Round),
		results:   make(map[string][]domain.ResultEntry),
		standings: make(map[domain.House]*domain.HouseStanding),
		potions:   make(map[int64]*domain.PotionRecipe),
		potionRef: make(map[int64]int),
	}
}

func (r *fakeRepo) addTeam(name string, house domain.House, total int) *domain.Team {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextTeam++
	t := &domain.Team{
		ID:         r.nextTeam,
		Name:       name,
		House:      house,
		TotalScore: total,
		Active:     true,
		CreatedAt:  time.Now(),
	}
	r.teams[t.ID] = t
	r.byName[name] = t.ID
	return t
}

func (r *fakeRepo) Health(ctx context.Context) error { return nil }

func (r *fakeRepo) UpsertTeam(ctx context.Context, u ports.TeamUpsert) (*domain.Team, error) {
	if r.errUpsert != nil {
		return nil, r.errUpsert
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	id, ok := r.byName[u.Name]
	if !ok {
		r.nextTeam++
		id = r.nextTeam
		r.teams[id] = &domain.Team{ID: id, Name: u.Name, Active: true, CreatedAt: time.Now()}
		r.byName[u.Name] = id
	}
	t := r.teams[id]
	t.House = u.House
	if u.RoundScore != nil {
		t.RoundScore = *u.RoundScore
	}
	if u.Round > 0 && !t.ParticipatesIn(u.Round) {
		t.Rounds = append(t.Rounds, u.Round)
	}
	cp := *t
	return &cp, nil
}

func (r *fakeRepo) GetTeam(ctx context.Context, teamID int64) (*domain.Team, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.teams[teamID]
	if !ok {
		return nil, domain.NewNotFoundError("team")
	}
	cp := *t
	return &cp, nil
}

func (r *fakeRepo) GetTeamByName(ctx context.Context, name string) (*domain.Team, error) {
	r.mu.Lock()
	id, ok := r.byName[name]
	r.mu.Unlock()
	if !ok {
		return nil, domain.NewNotFoundError("team")
	}
	return r.GetTeam(ctx, id)
}

func (r *fakeRepo) ListTeams(ctx context.Context, f ports.TeamFilter) ([]domain.Team, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []domain.Team{}
	for _, t := range r.teams {
		if f.ActiveOnly && (!t.Active || t.Eliminated) {
			continue
		}
		if !f.ActiveOnly && !f.IncludeEliminated && t.Eliminated {
			continue
		}
		if f.Round > 0 && !t.ParticipatesIn(f.Round) {
			continue
		}
		if f.House != "" && t.House != f.House {
			continue
		}
		out = append(out, *t)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].TotalScore != out[j].TotalScore {
			return out[i].TotalScore > out[j].TotalScore
		}
		return out[i].Name < out[j].Name
	})
	return out, nil
}

func (r *fakeRepo) ApplyScoreDelta(ctx context.Context, teamID int64, delta int) (*domain.Team, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.deltaCalls++
	if r.deltaFailOn > 0 && r.deltaCalls >= r.deltaFailOn {
		return nil, r.deltaErr
	}
	t, ok := r.teams[teamID]
	if !ok {
		return nil, domain.NewNotFoundError("team")
	}
	t.TotalScore += delta
	cp := *t
	return &cp, nil
}

func (r *fakeRepo) SetTeamTotal(ctx context.Context, teamID int64, total int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.teams[teamID]
	if !ok {
		return domain.NewNotFoundError("team")
	}
	t.TotalScore = total
	return nil
}

func (r *fakeRepo) DeactivateTeam(ctx context.Context, teamID int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.teams[teamID]
	if !ok {
		return domain.NewNotFoundError("team")
	}
	t.Active = false
	return nil
}

func (r *fakeRepo) EliminateTeams(ctx context.Context, teamIDs []int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, id := range teamIDs {
		if t, ok := r.teams[id]; ok {
			t.Eliminated = true
		}
	}
	return nil
}

func (r *fakeRepo) TagParticipation(ctx context.Context, teamIDs []int64, roundNumber int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, id := range teamIDs {
		if t, ok := r.teams[id]; ok && !t.ParticipatesIn(roundNumber) {
			t.Rounds = append(t.Rounds, roundNumber)
		}
	}
	return nil
}

func (r *fakeRepo) SetTeamPotion(ctx context.Context, teamID int64, potionID *int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.teams[teamID]
	if !ok {
		return domain.NewNotFoundError("team")
	}
	if t.PotionID != nil {
		r.potionRef[*t.PotionID]--
	}
	t.PotionID = potionID
	if potionID != nil {
		r.potionRef[*potionID]++
	}
	return nil
}

func (r *fakeRepo) GetLock(ctx context.Context, roundID string) (bool, error) {
	if r.errLock != nil {
		return false, r.errLock
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	locked, ok := r.locks[roundID]
	if !ok {
		return true, nil
	}
	return locked, nil
}

func (r *fakeRepo) SetLock(ctx context.Context, roundID string, locked bool) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.locks[roundID] = locked
	return locked, nil
}

func (r *fakeRepo) GetRound(ctx context.Context, roundID string) (*domain.Round, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	rd, ok := r.rounds[roundID]
	if !ok {
		return nil, domain.NewNotFoundError("round")
	}
	cp := *rd
	return &cp, nil
}

func (r *fakeRepo) ReplaceResults(ctx context.Context, roundID string, number int, entries []domain.ResultEntry, approved bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	rd, ok := r.rounds[roundID]
	if !ok {
		rd = &domain.Round{ID: roundID, Number: number}
		r.rounds[roundID] = rd
	}
	rd.Approved = approved
	r.results[roundID] = append([]domain.ResultEntry(nil), entries...)
	return nil
}

func (r *fakeRepo) ListResults(ctx context.Context, roundID string) ([]ports.ResultRow, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	rows := []ports.ResultRow{}
	for _, e := range r.results[roundID] {
		row := ports.ResultRow{Kind: e.Kind, Points: e.Points, Time: e.Time, Rank: e.Rank, PotionID: e.PotionID}
		for _, id := range e.Teams() {
			if t, ok := r.teams[id]; ok {
				row.Teams = append(row.Teams, ports.TeamRef{ID: t.ID, Name: t.Name, House: t.House, TotalScore: t.TotalScore})
			}
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func (r *fakeRepo) ListAllResults(ctx context.Context) ([]ports.StoredResult, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	ids := make([]string, 0, len(r.results))
	for id := range r.results {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	out := []ports.StoredResult{}
	for _, id := range ids {
		for _, e := range r.results[id] {
			out = append(out, ports.StoredResult{RoundID: id, Entry: e})
		}
	}
	return out, nil
}

func (r *fakeRepo) SetWinnerIfNone(ctx context.Context, roundID string, house domain.House) (*domain.House, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	rd, ok := r.rounds[roundID]
	if !ok {
		n, _ := domain.ParseRoundID(roundID)
		rd = &domain.Round{ID: roundID, Number: n}
		r.rounds[roundID] = rd
	}
	if rd.Winner != nil {
		cur := *rd.Winner
		return &cur, false, nil
	}
	h := house
	rd.Winner = &h
	return &h, true, nil
}

func (r *fakeRepo) ClearWinner(ctx context.Context, roundID string, house domain.House) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	rd, ok := r.rounds[roundID]
	if !ok || rd.Winner == nil || *rd.Winner != house {
		return false, nil
	}
	rd.Winner = nil
	return true, nil
}

func (r *fakeRepo) SeedStanding(ctx context.Context, house domain.House) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.standings[house]; !ok {
		r.standings[house] = &domain.HouseStanding{House: house}
	}
	return nil
}

func (r *fakeRepo) AddQuaffles(ctx context.Context, house domain.House, delta int) (*domain.HouseStanding, error) {
	if r.errQuaffles != nil {
		return nil, r.errQuaffles
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	st, ok := r.standings[house]
	if !ok {
		st = &domain.HouseStanding{House: house}
		r.standings[house] = st
	}
	st.Quaffles += delta
	cp := *st
	return &cp, nil
}

func (r *fakeRepo) SetStandingPoints(ctx context.Context, house domain.House, points int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	st, ok := r.standings[house]
	if !ok {
		st = &domain.HouseStanding{House: house}
		r.standings[house] = st
	}
	st.Points = points
	return nil
}

func (r *fakeRepo) ListStandings(ctx context.Context) ([]domain.HouseStanding, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []domain.HouseStanding{}
	for _, st := range r.standings {
		out = append(out, *st)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Quaffles != out[j].Quaffles {
			return out[i].Quaffles > out[j].Quaffles
		}
		return out[i].Points > out[j].Points
	})
	return out, nil
}

func (r *fakeRepo) CreatePotion(ctx context.Context, name string, steps []domain.PotionStep) (*domain.PotionRecipe, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, p := range r.potions {
		if p.Name == name {
			return nil, domain.NewConflictError("recipe already exists")
		}
	}
	r.nextPot++
	p := &domain.PotionRecipe{ID: r.nextPot, Name: name, Steps: steps, CreatedAt: time.Now()}
	r.potions[p.ID] = p
	cp := *p
	return &cp, nil
}

func (r *fakeRepo) GetPotion(ctx context.Context, potionID int64) (*domain.PotionRecipe, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.potions[potionID]
	if !ok {
		return nil, domain.NewNotFoundError("potion")
	}
	cp := *p
	return &cp, nil
}

func (r *fakeRepo) ListPotions(ctx context.Context) ([]domain.PotionRecipe, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []domain.PotionRecipe{}
	for _, p := range r.potions {
		out = append(out, *p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *fakeRepo) DeletePotionIfUnused(ctx context.Context, potionID int64) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.potionRef[potionID] > 0 {
		return false, nil
	}
	delete(r.potions, potionID)
	return true, nil
}

func (r *fakeRepo) IncrementPotionUses(ctx context.Context, potionID int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.potions[potionID]
	if !ok {
		return domain.NewNotFoundError("potion")
	}
	p.Uses++
	return nil
}

func (r *fakeRepo) AppendActivity(ctx context.Context, e domain.ActivityEntry) error {
	if r.errActivity != nil {
		return r.errActivity
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	e.ID = int64(len(r.activity) + 1)
	e.CreatedAt = time.Now()
	r.activity = append(r.activity, e)
	return nil
}

func (r *fakeRepo) ListActivity(ctx context.Context, limit int) ([]domain.ActivityEntry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []domain.ActivityEntry{}
	for i := len(r.activity) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, r.activity[i])
	}
	return out, nil
}

var _ ports.TournamentRepository = (*fakeRepo)(nil)

// unlockRound opens the gate for a round; the default state is locked.
func (r *fakeRepo) unlockRound(roundID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.locks[roundID] = false
}

var (
	admin     = domain.Actor{Email: "admin@hogwarts.example", Role: domain.RoleAdmin}
	headRound = func(n int) domain.Actor {
		return domain.Actor{Email: "head@hogwarts.example", Role: domain.RoleRoundHead, Round: n}
	}
)
