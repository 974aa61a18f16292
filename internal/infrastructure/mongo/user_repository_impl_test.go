package mongo

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/oksasatya/go-otp-auth/internal/domain/entity"
)

func TestDocumentRoundTrip(t *testing.T) {
	exp := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	u := &entity.User{
		Name:              "Ann",
		Email:             "ann@x.com",
		Password:          "$2a$10$hash",
		VerifyOTP:         "123456",
		VerifyOTPExpireAt: exp,
	}

	doc := toDocument(u)
	assert.Nil(t, doc.ResetOTPExpireAt, "empty expiry is stored as null")
	assert.Equal(t, exp, *doc.VerifyOTPExpireAt)

	doc.ID = primitive.NewObjectID()
	raw, err := bson.Marshal(doc)
	assert.NoError(t, err)

	var back userDocument
	assert.NoError(t, bson.Unmarshal(raw, &back))
	got := back.toEntity()
	assert.Equal(t, doc.ID.Hex(), got.ID)
	assert.Equal(t, "123456", got.VerifyOTP)
	assert.True(t, got.VerifyOTPExpireAt.Equal(exp))
	assert.True(t, got.ResetOTPExpireAt.IsZero())
}

func TestDocumentFieldNames(t *testing.T) {
	raw, err := bson.Marshal(toDocument(&entity.User{Email: "ann@x.com"}))
	assert.NoError(t, err)

	var m bson.M
	assert.NoError(t, bson.Unmarshal(raw, &m))
	for _, k := range []string{"name", "email", "password", "isAccountVerified", "verifyOtp", "verifyOtpExpireAt", "resetOtp", "resetOtpExpireAt"} {
		assert.Contains(t, m, k)
	}
	assert.NotContains(t, m, "_id", "zero id is omitted so the store assigns one")
}
