package store

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"sideways_back_end/internal/database"
)

// Fenêtre pendant laquelle une même carte ne peut pas repasser en caisse.
const cardGuardTTL = 60 * time.Second

func cardGuardKey(cardID string) string {
	return "order_card_guard:" + cardID
}

// RedisCardGuard refuse deux checkouts de la même carte dans la même minute.
// La clé est globale à la carte, pas à l'utilisateur : l'expiration Redis
// porte toute la sémantique.
type RedisCardGuard struct {
	client *redis.Client
}

func NewRedisCardGuard(client *redis.Client) *RedisCardGuard {
	return &RedisCardGuard{client: client}
}

func NewDefaultCardGuard() *RedisCardGuard {
	return &RedisCardGuard{client: database.Redis}
}

// RecentlyUsed est une lecture pure : un checkout refusé ne pose jamais la clé.
func (g *RedisCardGuard) RecentlyUsed(ctx context.Context, cardID string) (bool, error) {
	n, err := g.client.Exists(ctx, cardGuardKey(cardID)).Result()
	if err != nil {
		return false, fmt.Errorf("lecture garde carte %s: %w", cardID, err)
	}
	return n > 0, nil
}

// MarkUsed pose la clé après un checkout réussi.
func (g *RedisCardGuard) MarkUsed(ctx context.Context, cardID string) error {
	if err := g.client.Set(ctx, cardGuardKey(cardID), "1", cardGuardTTL).Err(); err != nil {
		return fmt.Errorf("écriture garde carte %s: %w", cardID, err)
	}
	return nil
}
