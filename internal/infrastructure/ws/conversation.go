package ws

import (
	"sync"

	"github.com/hilthontt/devtea/internal/domain"
)

// Conversation holds the live subscribers of one conversation key.
type Conversation struct {
	Key     domain.ConversationKey
	Clients map[string]*Client
}

type ConversationManager struct {
	conversations map[domain.ConversationKey]*Conversation
	mu            sync.RWMutex
}

func NewConversationManager() *ConversationManager {
	return &ConversationManager{
		conversations: make(map[domain.ConversationKey]*Conversation),
	}
}

func (cm *ConversationManager) AddClient(cl *Client) {
	cm.mu.Lock()
	defer cm.mu.Unlock()

	conv, ok := cm.conversations[cl.Key]
	if !ok {
		conv = &Conversation{Key: cl.Key, Clients: make(map[string]*Client)}
		cm.conversations[cl.Key] = conv
	}
	conv.Clients[cl.ID] = cl
}

// RemoveClient drops the subscriber and closes its queue. It is safe to call
// twice for the same client.
func (cm *ConversationManager) RemoveClient(cl *Client) {
	cm.mu.Lock()
	defer cm.mu.Unlock()

	conv, ok := cm.conversations[cl.Key]
	if !ok {
		return
	}
	if _, ok := conv.Clients[cl.ID]; !ok {
		return
	}

	delete(conv.Clients, cl.ID)
	close(cl.Message)

	if len(conv.Clients) == 0 {
		delete(cm.conversations, cl.Key)
	}
}

func (cm *ConversationManager) Subscribers(key domain.ConversationKey) int {
	cm.mu.RLock()
	defer cm.mu.RUnlock()

	if conv, ok := cm.conversations[key]; ok {
		return len(conv.Clients)
	}
	return 0
}

// Broadcast queues msg for every subscriber of its conversation and returns
// how many slow subscribers had it dropped.
func (cm *ConversationManager) Broadcast(msg *WSMessage) int {
	cm.mu.RLock()
	defer cm.mu.RUnlock()

	conv, ok := cm.conversations[msg.Conversation]
	if !ok {
		return 0
	}

	dropped := 0
	for _, cl := range conv.Clients {
		select {
		case cl.Message <- msg:
		default:
			dropped++
		}
	}
	return dropped
}

func (cm *ConversationManager) RemoveAll() {
	cm.mu.Lock()
	defer cm.mu.Unlock()

	for key, conv := range cm.conversations {
		for id, cl := range conv.Clients {
			delete(conv.Clients, id)
			close(cl.Message)
		}
		delete(cm.conversations, key)
	}
}
