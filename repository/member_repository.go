// Package repository is the entity store: one interface per entity and a
// SQLite implementation of each.
//
// Services never write SQL. They receive a *Store, whose fields are these
// interfaces, and either call them directly or open a unit of work with
// Store.InTx. Every implementation takes a database.TxQuerier so the same
// code runs against the pool and inside a transaction.
package repository

import (
	"context"

	"github.com/akinalp/rollcall/models"
)

// MemberRepository stores registered members.
//
// The attendance path only ever calls GetByDiscordName; creation and
// deletion belong to the administrative workflows.
type MemberRepository interface {
	// Create assigns ID and CreatedAt. A taken discord_name returns
	// pkg.ErrAlreadyExists.
	Create(ctx context.Context, member *models.Member) error
	GetByID(ctx context.Context, id string) (*models.Member, error)
	GetByDiscordName(ctx context.Context, discordName string) (*models.Member, error)
	List(ctx context.Context) ([]models.Member, error)
	UpdateRotation(ctx context.Context, id string, inRotation bool) error
	// Delete removes the member and, through ON DELETE CASCADE, every
	// attendance and play record that references it.
	Delete(ctx context.Context, id string) error
}
