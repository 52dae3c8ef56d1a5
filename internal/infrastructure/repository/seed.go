package repository

import (
	"context"
	"fmt"
	"time"

	mapset "github.com/deckarep/golang-set/v2"
	"github.com/hilthontt/devtea/internal/domain"
)

const systemCreator = "system"

type seedMessage struct {
	content string
	age     time.Duration
}

type seedRoom struct {
	id          string
	name        string
	description string
	welcome     []seedMessage
}

var defaultRooms = []seedRoom{
	{
		id:          "general",
		name:        "General",
		description: "General discussion for all developers",
		welcome: []seedMessage{
			{"Welcome to the General discussion room! 👋 This is where developers from all backgrounds come together to chat.", 3600 * time.Second},
			{"💡 Tip: You can join/leave rooms, create new ones, and send direct messages. Use the search to find rooms!", 3500 * time.Second},
		},
	},
	{
		id:          "frontend",
		name:        "Frontend Devs",
		description: "React, Vue, Angular, and all things frontend",
		welcome: []seedMessage{
			{"Welcome to Frontend Devs! 🚀 Share your React, Vue, Angular tips and discuss the latest in frontend development.", 3600 * time.Second},
			{"🔥 Hot topics: Component libraries, state management, performance optimization, and modern CSS!", 3400 * time.Second},
		},
	},
	{
		id:          "backend",
		name:        "Backend Devs",
		description: "APIs, databases, servers, and backend architecture",
		welcome: []seedMessage{
			{"Welcome to Backend Devs! 🔧 Discuss APIs, databases, server architecture, and backend best practices.", 3600 * time.Second},
			{"💾 Popular topics: Microservices, database design, API security, and scalability patterns!", 3300 * time.Second},
		},
	},
	{
		id:          "mobile",
		name:        "Mobile Development",
		description: "iOS, Android, React Native, Flutter discussions",
		welcome: []seedMessage{
			{"Welcome to Mobile Development! 📱 Discuss iOS, Android, React Native, Flutter, and mobile best practices.", 3600 * time.Second},
		},
	},
	{
		id:          "devops",
		name:        "DevOps & Infrastructure",
		description: "CI/CD, Docker, Kubernetes, cloud platforms",
		welcome: []seedMessage{
			{"Welcome to DevOps & Infrastructure! ⚙️ Share knowledge about CI/CD, containerization, and cloud platforms.", 3600 * time.Second},
		},
	},
}

// SeedDefaultRooms installs the built-in rooms and their welcome messages.
// Rooms that already exist are left untouched.
func SeedDefaultRooms(ctx context.Context, store domain.ConversationStore, now time.Time) error {
	return store.Update(ctx, func(tx domain.StoreTx) error {
		for _, seed := range defaultRooms {
			if _, err := tx.Room(seed.id); err == nil {
				continue
			}

			room := &domain.Room{
				ID:          seed.id,
				Name:        seed.name,
				Description: seed.description,
				CreatedBy:   systemCreator,
				CreatedAt:   now,
				Members:     mapset.NewThreadUnsafeSet[string](),
				IsPublic:    true,
			}
			if err := tx.InsertRoom(room); err != nil {
				return fmt.Errorf("seed room %s: %w", seed.id, err)
			}

			for i, w := range seed.welcome {
				msg := domain.Message{
					ID:        fmt.Sprintf("welcome-%s-%d", seed.id, i+1),
					Author:    domain.SystemAuthor,
					Content:   w.content,
					Timestamp: now.Add(-w.age).UnixMilli(),
					Kind:      domain.KindRoom,
					RoomID:    seed.id,
				}
				if err := tx.AppendMessage(domain.RoomKey(seed.id), msg); err != nil {
					return fmt.Errorf("seed welcome message for %s: %w", seed.id, err)
				}
			}
		}
		return nil
	})
}
