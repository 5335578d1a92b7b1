package handlers

import (
  "fmt"
  "strings"
  "time"
  "github.com/gin-gonic/gin"
  "github.com/google/uuid"
)

const dateLayout = "2006-01-02"

func parseUUIDParam(c *gin.Context, name string) (uuid.UUID, error) {
  return uuid.Parse(c.Param(name))
}

func parseDate(raw string) (time.Time, error) {
  raw = strings.TrimSpace(raw)
  if raw == "" {
    return time.Time{}, fmt.Errorf("date is required (format %s)", dateLayout)
  }
  d, err := time.Parse(dateLayout, raw)
  if err != nil {
    return time.Time{}, fmt.Errorf("invalid date %q (format %s)", raw, dateLayout)
  }
  return d.UTC(), nil
}
