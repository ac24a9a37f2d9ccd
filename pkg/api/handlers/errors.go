package handlers

import "github.com/gofiber/fiber/v3"

// ErrNotLoaded is returned before a deck has been loaded
var ErrNotLoaded = fiber.NewError(fiber.StatusServiceUnavailable, "deck not loaded")

// ErrInvalidIndex is returned when a block index is not an integer
var ErrInvalidIndex = fiber.NewError(fiber.StatusBadRequest, "invalid block index, expected an integer")

// ErrBlockNotFound is returned when a block index is out of range
var ErrBlockNotFound = fiber.NewError(fiber.StatusNotFound, "block not found")

// ErrActionNotFound is returned when an action is not found
var ErrActionNotFound = fiber.NewError(fiber.StatusNotFound, "action not found")
