package cmn

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

const (
	BASE_TOKEN0 = "token0"
	BASE_TOKEN1 = "token1"
)

// ActivePosition is the single position named by the positions file.
type ActivePosition struct {
	Id           uint64
	CostBasisUSD decimal.Decimal
	Base         string // token0, token1 or empty for the configured default
}

// ParseBase reports whether token0 is the presentation base.
func ParseBase(s string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case BASE_TOKEN0:
		return true, nil
	case BASE_TOKEN1:
		return false, nil
	}
	return false, fmt.Errorf("%w: base must be %s or %s, got %q", ErrData, BASE_TOKEN0, BASE_TOKEN1, s)
}

// ReadPositionsFile returns the active position or nil when the file is missing or malformed.
// Format: first non-comment line "positionId,costBasisUsd[,token0|token1]".
func ReadPositionsFile(path string) *ActivePosition {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			log.Info().Msgf("positions file %s not found", path)
		} else {
			log.Error().Err(err).Msgf("reading positions file %s", path)
		}
		return nil
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	ln := 0
	for scanner.Scan() {
		ln++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		p, err := parsePositionLine(line)
		if err != nil {
			log.Error().Err(err).Msgf("invalid format at line %d in %s", ln, path)
			return nil
		}
		return p
	}

	if err := scanner.Err(); err != nil {
		log.Error().Err(err).Msgf("reading positions file %s", path)
	}
	return nil
}

func parsePositionLine(line string) (*ActivePosition, error) {
	parts := strings.Split(line, ",")
	if len(parts) != 2 && len(parts) != 3 {
		return nil, fmt.Errorf("%w: expected id,cost[,base], got %d fields", ErrData, len(parts))
	}

	id, err := strconv.ParseUint(strings.TrimSpace(parts[0]), 10, 64)
	if err != nil {
		return nil, fmt.Errorf("%w: position id: %v", ErrData, err)
	}

	cost, err := decimal.NewFromString(strings.TrimSpace(parts[1]))
	if err != nil {
		return nil, fmt.Errorf("%w: cost basis: %v", ErrData, err)
	}

	p := &ActivePosition{Id: id, CostBasisUSD: cost}
	if len(parts) == 3 {
		if _, err := ParseBase(parts[2]); err != nil {
			return nil, err
		}
		p.Base = strings.ToLower(strings.TrimSpace(parts[2]))
	}
	return p, nil
}

// BaseIsToken0 resolves the orientation of the position, falling back to def.
func (p *ActivePosition) BaseIsToken0(def string) bool {
	b := p.Base
	if b == "" {
		b = def
	}
	base0, err := ParseBase(b)
	if err != nil {
		return true
	}
	return base0
}
