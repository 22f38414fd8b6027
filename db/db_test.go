package db

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

func TestNotFoundTranslatesNoDocuments(t *testing.T) {
	assert.ErrorIs(t, NotFound(mongo.ErrNoDocuments), ErrNotFound)

	other := errors.New("socket closed")
	assert.Equal(t, other, NotFound(other))
	assert.Nil(t, NotFound(nil))
}

func TestRefFilterWithHumanReference(t *testing.T) {
	assert.Equal(t, bson.M{"orderNumber": "ORD-42"}, RefFilter("ORD-42", "orderNumber"))
}

func TestRefFilterWithObjectID(t *testing.T) {
	oid := primitive.NewObjectID()
	f := RefFilter(oid.Hex(), "orderNumber")

	or, ok := f["$or"].(bson.A)
	if assert.True(t, ok) && assert.Len(t, or, 2) {
		assert.Equal(t, bson.M{"_id": oid}, or[0])
		assert.Equal(t, bson.M{"orderNumber": oid.Hex()}, or[1])
	}
}
