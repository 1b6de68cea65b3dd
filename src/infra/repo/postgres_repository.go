// Package repo contains the Postgres adapter for the core repository port.
package repo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"goblet/src/core/domain"
	"goblet/src/core/ports"
	"goblet/src/infra/db"
)

// PostgresRepository implements TournamentRepository using pgx.
type PostgresRepository struct {
	pool *pgxpool.Pool
	log  *slog.Logger
}

// NewPostgresRepository constructs a repository backed by Postgres.
func NewPostgresRepository(pg *db.Postgres, log *slog.Logger) *PostgresRepository {
	return &PostgresRepository{
		pool: pg.Pool,
		log:  log,
	}
}

var _ ports.TournamentRepository = (*PostgresRepository)(nil)

func (r *PostgresRepository) Health(ctx context.Context) error {
	return r.pool.Ping(ctx)
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	return false
}

const teamColumns = `team_id, name, house, total_score, round_score, rounds, active, eliminated, potion_id, created_at, updated_at`

func scanTeam(row pgx.Row) (*domain.Team, error) {
	var t domain.Team
	var house string
	if err := row.Scan(
		&t.ID, &t.Name, &house, &t.TotalScore, &t.RoundScore, &t.Rounds,
		&t.Active, &t.Eliminated, &t.PotionID, &t.CreatedAt, &t.UpdatedAt,
	); err != nil {
		return nil, err
	}
	t.House = domain.House(house)
	return &t, nil
}

// Teams

func (r *PostgresRepository) UpsertTeam(ctx context.Context, u ports.TeamUpsert) (*domain.Team, error) {
	const q = `
		INSERT INTO teams (name, house, round_score, rounds)
		VALUES ($1, $2, COALESCE($3::int, 0),
			CASE WHEN $4::int > 0 THEN ARRAY[$4::int] ELSE '{}'::int[] END)
		ON CONFLICT (name) DO UPDATE SET
			house       = EXCLUDED.house,
			round_score = COALESCE($3::int, teams.round_score),
			rounds      = CASE WHEN $4::int > 0 AND NOT teams.rounds @> ARRAY[$4::int]
			              THEN teams.rounds || $4::int ELSE teams.rounds END,
			updated_at  = now()
		RETURNING ` + teamColumns
	team, err := scanTeam(r.pool.QueryRow(ctx, q, u.Name, string(u.House), u.RoundScore, u.Round))
	if err != nil {
		return nil, err
	}
	return team, nil
}

func (r *PostgresRepository) GetTeam(ctx context.Context, teamID int64) (*domain.Team, error) {
	const q = `SELECT ` + teamColumns + ` FROM teams WHERE team_id = $1`
	team, err := scanTeam(r.pool.QueryRow(ctx, q, teamID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.NewNotFoundError("team")
		}
		return nil, err
	}
	return team, nil
}

func (r *PostgresRepository) GetTeamByName(ctx context.Context, name string) (*domain.Team, error) {
	const q = `SELECT ` + teamColumns + ` FROM teams WHERE name = $1`
	team, err := scanTeam(r.pool.QueryRow(ctx, q, name))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.NewNotFoundError("team")
		}
		return nil, err
	}
	return team, nil
}

func (r *PostgresRepository) ListTeams(ctx context.Context, f ports.TeamFilter) ([]domain.Team, error) {
	q := `SELECT ` + teamColumns + ` FROM teams WHERE 1=1`
	args := []any{}
	if f.ActiveOnly {
		q += ` AND active AND NOT eliminated`
	} else if !f.IncludeEliminated {
		q += ` AND NOT eliminated`
	}
	if f.Round > 0 {
		args = append(args, f.Round)
		q += fmt.Sprintf(` AND rounds @> ARRAY[$%d::int]`, len(args))
	}
	if f.House != "" {
		args = append(args, string(f.House))
		q += fmt.Sprintf(` AND house = $%d`, len(args))
	}
	q += ` ORDER BY total_score DESC, name`

	rows, err := r.pool.Query(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	teams := []domain.Team{}
	for rows.Next() {
		t, err := scanTeam(rows)
		if err != nil {
			return nil, err
		}
		teams = append(teams, *t)
	}
	return teams, rows.Err()
}

func (r *PostgresRepository) ApplyScoreDelta(ctx context.Context, teamID int64, delta int) (*domain.Team, error) {
	const q = `
		UPDATE teams
		SET total_score = total_score + $2, updated_at = now()
		WHERE team_id = $1
		RETURNING ` + teamColumns
	team, err := scanTeam(r.pool.QueryRow(ctx, q, teamID, delta))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.NewNotFoundError("team")
		}
		return nil, err
	}
	return team, nil
}

func (r *PostgresRepository) SetTeamTotal(ctx context.Context, teamID int64, total int) error {
	const q = `
		UPDATE teams
		SET total_score = $2, updated_at = now()
		WHERE team_id = $1
	`
	res, err := r.pool.Exec(ctx, q, teamID, total)
	if err != nil {
		return err
	}
	if res.RowsAffected() == 0 {
		return domain.NewNotFoundError("team")
	}
	return nil
}

func (r *PostgresRepository) DeactivateTeam(ctx context.Context, teamID int64) error {
	const q = `
		UPDATE teams
		SET active = FALSE, updated_at = now()
		WHERE team_id = $1
	`
	res, err := r.pool.Exec(ctx, q, teamID)
	if err != nil {
		return err
	}
	if res.RowsAffected() == 0 {
		return domain.NewNotFoundError("team")
	}
	return nil
}

func (r *PostgresRepository) EliminateTeams(ctx context.Context, teamIDs []int64) error {
	if len(teamIDs) == 0 {
		return nil
	}
	const q = `
		UPDATE teams
		SET active = FALSE, eliminated = TRUE, updated_at = now()
		WHERE team_id = ANY($1)
	`
	_, err := r.pool.Exec(ctx, q, teamIDs)
	return err
}

func (r *PostgresRepository) TagParticipation(ctx context.Context, teamIDs []int64, roundNumber int) error {
	if len(teamIDs) == 0 {
		return nil
	}
	const q = `
		UPDATE teams
		SET rounds = rounds || $2::int, updated_at = now()
		WHERE team_id = ANY($1) AND NOT rounds @> ARRAY[$2::int]
	`
	_, err := r.pool.Exec(ctx, q, teamIDs, roundNumber)
	return err
}

func (r *PostgresRepository) SetTeamPotion(ctx context.Context, teamID int64, potionID *int64) error {
	const q = `
		UPDATE teams
		SET potion_id = $2, updated_at = now()
		WHERE team_id = $1
	`
	res, err := r.pool.Exec(ctx, q, teamID, potionID)
	if err != nil {
		return err
	}
	if res.RowsAffected() == 0 {
		return domain.NewNotFoundError("team")
	}
	return nil
}

// Round locks

func (r *PostgresRepository) GetLock(ctx context.Context, roundID string) (bool, error) {
	const q = `SELECT locked FROM round_locks WHERE round_id = $1`
	var locked bool
	if err := r.pool.QueryRow(ctx, q, roundID).Scan(&locked); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			// No record means locked: the gate fails closed.
			return true, nil
		}
		return true, err
	}
	return locked, nil
}

func (r *PostgresRepository) SetLock(ctx context.Context, roundID string, locked bool) (bool, error) {
	const q = `
		INSERT INTO round_locks (round_id, locked)
		VALUES ($1, $2)
		ON CONFLICT (round_id) DO UPDATE SET locked = EXCLUDED.locked, updated_at = now()
		RETURNING locked
	`
	var state bool
	if err := r.pool.QueryRow(ctx, q, roundID, locked).Scan(&state); err != nil {
		return true, err
	}
	return state, nil
}

// Rounds and results

func (r *PostgresRepository) GetRound(ctx context.Context, roundID string) (*domain.Round, error) {
	const q = `
		SELECT round_id, round_number, winner, approved, created_at, updated_at
		FROM rounds
		WHERE round_id = $1
	`
	var rd domain.Round
	var winner *string
	if err := r.pool.QueryRow(ctx, q, roundID).Scan(
		&rd.ID, &rd.Number, &winner, &rd.Approved, &rd.CreatedAt, &rd.UpdatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.NewNotFoundError("round")
		}
		return nil, err
	}
	if winner != nil {
		h := domain.House(*winner)
		rd.Winner = &h
	}
	return &rd, nil
}

func (r *PostgresRepository) ReplaceResults(ctx context.Context, roundID string, number int, entries []domain.ResultEntry, approved bool) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	const upsertRound = `
		INSERT INTO rounds (round_id, round_number, approved)
		VALUES ($1, $2, $3)
		ON CONFLICT (round_id) DO UPDATE SET approved = EXCLUDED.approved, updated_at = now()
	`
	if _, err := tx.Exec(ctx, upsertRound, roundID, number, approved); err != nil {
		return err
	}

	// Last write wins: the supplied list replaces prior results wholesale.
	if _, err := tx.Exec(ctx, `DELETE FROM round_results WHERE round_id = $1`, roundID); err != nil {
		return err
	}

	const insertEntry = `
		INSERT INTO round_results (round_id, position, kind, team_id, team2_id, potion_id, points, time_taken, rank)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`
	for i, e := range entries {
		var teamID, team2ID *int64
		var rank *int
		switch e.Kind {
		case domain.KindSingle:
			id := e.TeamID
			teamID = &id
			rk := e.Rank
			rank = &rk
		case domain.KindPaired:
			id1, id2 := e.TeamIDs[0], e.TeamIDs[1]
			teamID, team2ID = &id1, &id2
		}
		if _, err := tx.Exec(ctx, insertEntry,
			roundID, i, string(e.Kind), teamID, team2ID, e.PotionID, e.Points, e.Time, rank,
		); err != nil {
			return err
		}
	}

	return tx.Commit(ctx)
}

func (r *PostgresRepository) ListResults(ctx context.Context, roundID string) ([]ports.ResultRow, error) {
	const q = `
		SELECT rr.kind, rr.points, rr.time_taken, COALESCE(rr.rank, 0), rr.potion_id, p.name,
		       t1.team_id, t1.name, t1.house, t1.total_score,
		       t2.team_id, t2.name, t2.house, t2.total_score
		FROM round_results rr
		LEFT JOIN teams t1 ON t1.team_id = rr.team_id
		LEFT JOIN teams t2 ON t2.team_id = rr.team2_id
		LEFT JOIN potions p ON p.potion_id = rr.potion_id
		WHERE rr.round_id = $1
		ORDER BY rr.position
	`
	rows, err := r.pool.Query(ctx, q, roundID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	results := []ports.ResultRow{}
	for rows.Next() {
		var row ports.ResultRow
		var kind string
		var t1ID, t2ID *int64
		var t1Name, t1House, t2Name, t2House *string
		var t1Total, t2Total *int
		if err := rows.Scan(
			&kind, &row.Points, &row.Time, &row.Rank, &row.PotionID, &row.PotionName,
			&t1ID, &t1Name, &t1House, &t1Total,
			&t2ID, &t2Name, &t2House, &t2Total,
		); err != nil {
			return nil, err
		}
		row.Kind = domain.RoundKind(kind)
		if t1ID != nil {
			row.Teams = append(row.Teams, ports.TeamRef{
				ID: *t1ID, Name: *t1Name, House: domain.House(*t1House), TotalScore: *t1Total,
			})
		}
		if t2ID != nil {
			row.Teams = append(row.Teams, ports.TeamRef{
				ID: *t2ID, Name: *t2Name, House: domain.House(*t2House), TotalScore: *t2Total,
			})
		}
		results = append(results, row)
	}
	return results, rows.Err()
}

func (r *PostgresRepository) ListAllResults(ctx context.Context) ([]ports.StoredResult, error) {
	const q = `
		SELECT round_id, kind, team_id, team2_id, potion_id, points, time_taken, COALESCE(rank, 0)
		FROM round_results
		ORDER BY round_id, position
	`
	rows, err := r.pool.Query(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	results := []ports.StoredResult{}
	for rows.Next() {
		var sr ports.StoredResult
		var kind string
		var teamID, team2ID *int64
		if err := rows.Scan(&sr.RoundID, &kind, &teamID, &team2ID, &sr.Entry.PotionID, &sr.Entry.Points, &sr.Entry.Time, &sr.Entry.Rank); err != nil {
			return nil, err
		}
		sr.Entry.Kind = domain.RoundKind(kind)
		switch sr.Entry.Kind {
		case domain.KindPaired:
			if teamID != nil {
				sr.Entry.TeamIDs[0] = *teamID
			}
			if team2ID != nil {
				sr.Entry.TeamIDs[1] = *team2ID
			}
		default:
			if teamID != nil {
				sr.Entry.TeamID = *teamID
			}
		}
		results = append(results, sr)
	}
	return results, rows.Err()
}

func (r *PostgresRepository) SetWinnerIfNone(ctx context.Context, roundID string, house domain.House) (*domain.House, bool, error) {
	number, err := domain.ParseRoundID(roundID)
	if err != nil {
		return nil, false, err
	}

	// Conditional upsert: claims the winner slot only while it is empty, so
	// two concurrent awards cannot both succeed.
	const q = `
		INSERT INTO rounds (round_id, round_number, winner)
		VALUES ($1, $2, $3)
		ON CONFLICT (round_id) DO UPDATE SET winner = EXCLUDED.winner, updated_at = now()
		WHERE rounds.winner IS NULL
	`
	res, err := r.pool.Exec(ctx, q, roundID, number, string(house))
	if err != nil {
		return nil, false, err
	}
	if res.RowsAffected() == 1 {
		return nil, true, nil
	}

	round, err := r.GetRound(ctx, roundID)
	if err != nil {
		return nil, false, err
	}
	return round.Winner, false, nil
}

func (r *PostgresRepository) ClearWinner(ctx context.Context, roundID string, house domain.House) (bool, error) {
	const q = `
		UPDATE rounds
		SET winner = NULL, updated_at = now()
		WHERE round_id = $1 AND winner = $2
	`
	res, err := r.pool.Exec(ctx, q, roundID, string(house))
	if err != nil {
		return false, err
	}
	return res.RowsAffected() == 1, nil
}

// House standings

func (r *PostgresRepository) SeedStanding(ctx context.Context, house domain.House) error {
	const q = `
		INSERT INTO house_standings (house)
		VALUES ($1)
		ON CONFLICT (house) DO NOTHING
	`
	_, err := r.pool.Exec(ctx, q, string(house))
	return err
}

func (r *PostgresRepository) AddQuaffles(ctx context.Context, house domain.House, delta int) (*domain.HouseStanding, error) {
	const q = `
		INSERT INTO house_standings (house, quaffles)
		VALUES ($1, $2)
		ON CONFLICT (house) DO UPDATE SET quaffles = house_standings.quaffles + $2, updated_at = now()
		RETURNING house, quaffles, points, updated_at
	`
	var st domain.HouseStanding
	var h string
	if err := r.pool.QueryRow(ctx, q, string(house), delta).Scan(&h, &st.Quaffles, &st.Points, &st.UpdatedAt); err != nil {
		return nil, err
	}
	st.House = domain.House(h)
	return &st, nil
}

func (r *PostgresRepository) SetStandingPoints(ctx context.Context, house domain.House, points int) error {
	const q = `
		INSERT INTO house_standings (house, points)
		VALUES ($1, $2)
		ON CONFLICT (house) DO UPDATE SET points = $2, updated_at = now()
	`
	_, err := r.pool.Exec(ctx, q, string(house), points)
	return err
}

func (r *PostgresRepository) ListStandings(ctx context.Context) ([]domain.HouseStanding, error) {
	const q = `
		SELECT house, quaffles, points, updated_at
		FROM house_standings
		ORDER BY quaffles DESC, points DESC, house
	`
	rows, err := r.pool.Query(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	standings := []domain.HouseStanding{}
	for rows.Next() {
		var st domain.HouseStanding
		var h string
		if err := rows.Scan(&h, &st.Quaffles, &st.Points, &st.UpdatedAt); err != nil {
			return nil, err
		}
		st.House = domain.House(h)
		standings = append(standings, st)
	}
	return standings, rows.Err()
}

// Potion catalog

func (r *PostgresRepository) CreatePotion(ctx context.Context, name string, steps []domain.PotionStep) (*domain.PotionRecipe, error) {
	payload, err := json.Marshal(steps)
	if err != nil {
		return nil, err
	}
	const q = `
		INSERT INTO potions (name, steps)
		VALUES ($1, $2)
		RETURNING potion_id, name, steps, uses, created_at
	`
	return r.scanPotion(r.pool.QueryRow(ctx, q, name, payload))
}

func (r *PostgresRepository) scanPotion(row pgx.Row) (*domain.PotionRecipe, error) {
	var p domain.PotionRecipe
	var steps []byte
	if err := row.Scan(&p.ID, &p.Name, &steps, &p.Uses, &p.CreatedAt); err != nil {
		if isUniqueViolation(err) {
			return nil, domain.NewConflictError("recipe name already exists")
		}
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.NewNotFoundError("potion recipe")
		}
		return nil, err
	}
	if err := json.Unmarshal(steps, &p.Steps); err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *PostgresRepository) GetPotion(ctx context.Context, potionID int64) (*domain.PotionRecipe, error) {
	const q = `
		SELECT potion_id, name, steps, uses, created_at
		FROM potions
		WHERE potion_id = $1
	`
	return r.scanPotion(r.pool.QueryRow(ctx, q, potionID))
}

func (r *PostgresRepository) ListPotions(ctx context.Context) ([]domain.PotionRecipe, error) {
	const q = `
		SELECT potion_id, name, steps, uses, created_at
		FROM potions
		ORDER BY name
	`
	rows, err := r.pool.Query(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	recipes := []domain.PotionRecipe{}
	for rows.Next() {
		p, err := r.scanPotion(rows)
		if err != nil {
			return nil, err
		}
		recipes = append(recipes, *p)
	}
	return recipes, rows.Err()
}

func (r *PostgresRepository) DeletePotionIfUnused(ctx context.Context, potionID int64) (bool, error) {
	// Conditional delete closes the race against a concurrent team choosing
	// the recipe between a read and the delete.
	const q = `
		DELETE FROM potions
		WHERE potion_id = $1
		  AND NOT EXISTS (SELECT 1 FROM teams WHERE potion_id = $1)
	`
	res, err := r.pool.Exec(ctx, q, potionID)
	if err != nil {
		return false, err
	}
	return res.RowsAffected() == 1, nil
}

func (r *PostgresRepository) IncrementPotionUses(ctx context.Context, potionID int64) error {
	const q = `
		UPDATE potions
		SET uses = uses + 1
		WHERE potion_id = $1
	`
	res, err := r.pool.Exec(ctx, q, potionID)
	if err != nil {
		return err
	}
	if res.RowsAffected() == 0 {
		return domain.NewNotFoundError("potion recipe")
	}
	return nil
}

// Activity log

func (r *PostgresRepository) AppendActivity(ctx context.Context, e domain.ActivityEntry) error {
	var meta []byte
	if e.Meta != nil {
		var err error
		meta, err = json.Marshal(e.Meta)
		if err != nil {
			return err
		}
	}
	const q = `
		INSERT INTO activity_log (message, actor_email, round, points, meta)
		VALUES ($1, $2, $3, $4, $5)
	`
	_, err := r.pool.Exec(ctx, q, e.Message, e.ActorEmail, e.Round, e.Points, meta)
	return err
}

func (r *PostgresRepository) ListActivity(ctx context.Context, limit int) ([]domain.ActivityEntry, error) {
	const q = `
		SELECT entry_id, message, actor_email, round, points, meta, created_at
		FROM activity_log
		ORDER BY entry_id DESC
		LIMIT $1
	`
	rows, err := r.pool.Query(ctx, q, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	entries := []domain.ActivityEntry{}
	for rows.Next() {
		var e domain.ActivityEntry
		var meta []byte
		if err := rows.Scan(&e.ID, &e.Message, &e.ActorEmail, &e.Round, &e.Points, &meta, &e.CreatedAt); err != nil {
			return nil, err
		}
		if len(meta) > 0 {
			if err := json.Unmarshal(meta, &e.Meta); err != nil {
				return nil, err
			}
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
