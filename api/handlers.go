package api

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"

	"github.com/CristiGvl/picoDiskMon/internal/disk"
)

// startRequest is the body of POST /api/poller/start
type startRequest struct {
	Device     string `json:"device" validate:"required"`
	IntervalMs int64  `json:"interval_ms" validate:"omitempty,min=100,max=60000"`
}

// errorStatus maps sampler errors to HTTP status codes
func errorStatus(err error) int {
	switch {
	case errors.Is(err, disk.ErrNotFound):
		return fiber.StatusNotFound
	case errors.Is(err, disk.ErrPermissionDenied):
		return fiber.StatusForbidden
	case errors.Is(err, disk.ErrTimeout):
		return fiber.StatusGatewayTimeout
	default:
		return fiber.StatusInternalServerError
	}
}

// Volumes endpoint
func (s *Server) getVolumes(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), 10*time.Second)
	defer cancel()

	vols, err := s.volumes.ListVolumes(ctx)
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": err.Error()})
	}

	if all, _ := strconv.ParseBool(c.Query("all")); !all {
		vols = disk.Selectable(vols)
	}

	return c.JSON(vols)
}

// Single sample endpoint
func (s *Server) getSample(c *fiber.Ctx) error {
	device := c.Query("device")
	if device == "" {
		return c.Status(400).JSON(fiber.Map{"error": "device query parameter required"})
	}

	snap, err := s.sampler.Sample(c.UserContext(), device)
	if err != nil {
		s.log.WithFields(logrus.Fields{
			"device": device,
			"error":  err,
		}).Debug("Sample request failed")
		return c.Status(errorStatus(err)).JSON(fiber.Map{"error": err.Error()})
	}

	return c.JSON(snap)
}

// Poller status endpoint
func (s *Server) getPoller(c *fiber.Ctx) error {
	return c.JSON(s.poller.Status())
}

func (s *Server) startPoller(c *fiber.Ctx) error {
	var req startRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "invalid request body"})
	}
	if err := s.validate.Struct(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": err.Error()})
	}

	// the poller outlives the request
	interval := time.Duration(req.IntervalMs) * time.Millisecond
	if err := s.poller.Start(context.Background(), req.Device, interval); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": err.Error()})
	}

	return c.JSON(s.poller.Status())
}

func (s *Server) stopPoller(c *fiber.Ctx) error {
	s.poller.Stop()
	return c.JSON(s.poller.Status())
}
