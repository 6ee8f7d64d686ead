package model_test

import (
	"testing"

	"lodge/internal/domains/room/model"

	"github.com/stretchr/testify/assert"
)

func TestRoom_Fits(t *testing.T) {
	room := model.Room{Number: 101, BedCount: 2}

	assert.True(t, room.Fits(1))
	assert.True(t, room.Fits(2))
	assert.False(t, room.Fits(3))
}

func TestRoom_Exists(t *testing.T) {
	assert.False(t, model.Room{}.Exists())
	assert.True(t, model.Room{Number: 101}.Exists())
}
