package store

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// Profile is a gym profile. Field names are the Spanish wire names the web
// client has always used.
type Profile struct {
	UserID       uuid.UUID `json:"user_id"`
	Apodo        string    `json:"apodo"`
	Frase        string    `json:"frase"`
	Objetivo     string    `json:"objetivo"`
	Descripcion  string    `json:"descripcion"`
	Edad         int       `json:"edad"`
	PesoCorporal float64   `json:"peso_corporal"`
	Estatura     float64   `json:"estatura"`
	PressBanca   float64   `json:"press_banca"`
	Sentadilla   float64   `json:"sentadilla"`
	PesoMuerto   float64   `json:"peso_muerto"`
	Prensa       float64   `json:"prensa"`
	Biceps       float64   `json:"biceps"`
	Aura         int       `json:"aura"`
	Img          *string   `json:"img,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// ProfileWithUser joins a profile with the owning user's display data,
// used for the group roster view.
type ProfileWithUser struct {
	Profile
	UserName string `json:"user_name"`
	Role     string `json:"role"`
}

const profileColumns = `user_id, apodo, frase, objetivo, descripcion, edad, peso_corporal, estatura,
	press_banca, sentadilla, peso_muerto, prensa, biceps, aura, img, created_at, updated_at`

func scanProfile(row pgx.Row) (*Profile, error) {
	var p Profile
	err := row.Scan(&p.UserID, &p.Apodo, &p.Frase, &p.Objetivo, &p.Descripcion, &p.Edad,
		&p.PesoCorporal, &p.Estatura, &p.PressBanca, &p.Sentadilla, &p.PesoMuerto,
		&p.Prensa, &p.Biceps, &p.Aura, &p.Img, &p.CreatedAt, &p.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// CreateProfile inserts the initial gym profile for a user.
func (db *DB) CreateProfile(ctx context.Context, p *Profile) error {
	now := time.Now().UTC()
	p.CreatedAt = now
	p.UpdatedAt = now
	_, err := db.pool.Exec(ctx, `
		INSERT INTO profiles (user_id, apodo, frase, objetivo, descripcion, edad, peso_corporal,
			estatura, press_banca, sentadilla, peso_muerto, prensa, biceps, aura, img, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, 0, $14, $15, $15)
	`, p.UserID, p.Apodo, p.Frase, p.Objetivo, p.Descripcion, p.Edad, p.PesoCorporal,
		p.Estatura, p.PressBanca, p.Sentadilla, p.PesoMuerto, p.Prensa, p.Biceps, p.Img, now)
	return err
}

// GetProfile retrieves a user's gym profile. Returns nil, nil when absent.
func (db *DB) GetProfile(ctx context.Context, userID uuid.UUID) (*Profile, error) {
	return scanProfile(db.pool.QueryRow(ctx, `SELECT `+profileColumns+` FROM profiles WHERE user_id = $1`, userID))
}

// UpdateProfile replaces the mutable profile fields.
func (db *DB) UpdateProfile(ctx context.Context, p *Profile) (*Profile, error) {
	row := db.pool.QueryRow(ctx, `
		UPDATE profiles SET apodo = $1, frase = $2, objetivo = $3, descripcion = $4, edad = $5,
			peso_corporal = $6, estatura = $7, press_banca = $8, sentadilla = $9, peso_muerto = $10,
			prensa = $11, biceps = $12, updated_at = $13
		WHERE user_id = $14
		RETURNING `+profileColumns,
		p.Apodo, p.Frase, p.Objetivo, p.Descripcion, p.Edad,
		p.PesoCorporal, p.Estatura, p.PressBanca, p.Sentadilla, p.PesoMuerto,
		p.Prensa, p.Biceps, time.Now().UTC(), p.UserID)
	return scanProfile(row)
}

// AddAura adds mission points to a profile's aura.
func (db *DB) AddAura(ctx context.Context, userID uuid.UUID, points int) error {
	_, err := db.pool.Exec(ctx, `
		UPDATE profiles SET aura = aura + $1, updated_at = $2 WHERE user_id = $3
	`, points, time.Now().UTC(), userID)
	return err
}

// GetGroupProfiles lists all profiles of a group's members.
func (db *DB) GetGroupProfiles(ctx context.Context, groupID uuid.UUID) ([]ProfileWithUser, error) {
	rows, err := db.pool.Query(ctx, `
		SELECT p.user_id, p.apodo, p.frase, p.objetivo, p.descripcion, p.edad, p.peso_corporal,
			p.estatura, p.press_banca, p.sentadilla, p.peso_muerto, p.prensa, p.biceps, p.aura,
			p.img, p.created_at, p.updated_at, u.name, u.role
		FROM profiles p
		JOIN users u ON u.id = p.user_id
		WHERE u.group_id = $1
		ORDER BY p.aura DESC, u.name
	`, groupID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var profiles []ProfileWithUser
	for rows.Next() {
		var p ProfileWithUser
		if err := rows.Scan(&p.UserID, &p.Apodo, &p.Frase, &p.Objetivo, &p.Descripcion, &p.Edad,
			&p.PesoCorporal, &p.Estatura, &p.PressBanca, &p.Sentadilla, &p.PesoMuerto,
			&p.Prensa, &p.Biceps, &p.Aura, &p.Img, &p.CreatedAt, &p.UpdatedAt,
			&p.UserName, &p.Role); err != nil {
			return nil, err
		}
		profiles = append(profiles, p)
	}
	return profiles, rows.Err()
}
