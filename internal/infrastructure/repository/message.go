package repository

import (
	"github.com/hilthontt/devtea/internal/domain"
)

// Messages returns a copy of the log; an unknown key yields an empty slice.
func (tx *storeTx) Messages(key domain.ConversationKey) []domain.Message {
	log, exists := tx.store.messages[key]
	if !exists || len(log) == 0 {
		return []domain.Message{}
	}

	cpy := make([]domain.Message, len(log))
	copy(cpy, log)

	return cpy
}

// AppendMessage creates the log lazily. Oldest messages are evicted when the
// store has a capacity and it is exceeded.
func (tx *storeTx) AppendMessage(key domain.ConversationKey, message domain.Message) error {
	if !tx.writable {
		return domain.ErrReadOnlyTx
	}
	if key == "" || message.ID == "" {
		return domain.ErrInvalidInput
	}

	log := append(tx.store.messages[key], message)

	if capacity := int(tx.store.capacity); capacity > 0 && len(log) > capacity {
		excess := len(log) - capacity
		log = append([]domain.Message(nil), log[excess:]...)
	}

	tx.store.messages[key] = log

	return nil
}

func (tx *storeTx) FindMessage(key domain.ConversationKey, messageID string) (domain.Message, error) {
	if i := tx.indexOf(key, messageID); i >= 0 {
		return tx.store.messages[key][i], nil
	}
	return domain.Message{}, domain.ErrMessageNotFound
}

func (tx *storeTx) ReplaceMessage(key domain.ConversationKey, message domain.Message) error {
	if !tx.writable {
		return domain.ErrReadOnlyTx
	}

	i := tx.indexOf(key, message.ID)
	if i < 0 {
		return domain.ErrMessageNotFound
	}

	tx.store.messages[key][i] = message
	return nil
}

// RemoveMessage deletes in place, keeping the order of the remaining entries.
func (tx *storeTx) RemoveMessage(key domain.ConversationKey, messageID string) error {
	if !tx.writable {
		return domain.ErrReadOnlyTx
	}

	i := tx.indexOf(key, messageID)
	if i < 0 {
		return domain.ErrMessageNotFound
	}

	log := tx.store.messages[key]
	tx.store.messages[key] = append(log[:i], log[i+1:]...)

	return nil
}

// indexOf is a linear scan of one log.
func (tx *storeTx) indexOf(key domain.ConversationKey, messageID string) int {
	if messageID == "" {
		return -1
	}
	for i, msg := range tx.store.messages[key] {
		if msg.ID == messageID {
			return i
		}
	}
	return -1
}
