package common

import (
	"errors"

	"go.mongodb.org/mongo-driver/mongo"
)

// ConvertMongoError chuyển lỗi MongoDB driver thành error taxonomy của ứng dụng.
// ErrNotFound đi qua nguyên vẹn để caller còn phân biệt 404 với lỗi store.
func ConvertMongoError(err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, ErrNotFound) {
		return err
	}
	if errors.Is(err, mongo.ErrNoDocuments) {
		return ErrNotFound
	}

	// Duplicate key (unique index email) — race giữa 2 upsert cùng email
	if mongo.IsDuplicateKeyError(err) {
		return ErrDuplicate
	}

	// Timeout / network — store tạm thời không khả dụng
	if mongo.IsTimeout(err) || mongo.IsNetworkError(err) {
		return NewError(ErrCodeStoreTransient, MsgDatabaseError, StatusInternalServerError, err.Error())
	}

	return NewError(ErrCodeDatabaseQuery, MsgDatabaseError, StatusInternalServerError, err.Error())
}
