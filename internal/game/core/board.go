package core

// Terrain values as reported by the server. Any non-negative value is the
// index of the player owning the tile.
const (
	TileEmpty           = -1
	TileMountain        = -2
	TileUnknown         = -3
	TileUnknownObstacle = -4 // cities and mountains look like this in the fog of war
)

// NoGeneral is the general index reported for a player whose general has not
// been seen.
const NoGeneral = -1

// IsPlayerTile reports whether a terrain value denotes ownership.
func IsPlayerTile(terrain int) bool { return terrain >= 0 }

// IsObstacleTile reports whether a terrain value can never be walked on
// (mountain, or something in the fog that may be one).
func IsObstacleTile(terrain int) bool {
	return terrain == TileMountain || terrain == TileUnknownObstacle
}

// IsValidTerrain reports whether a terrain value is either a known sentinel or
// the index of one of numPlayers players.
func IsValidTerrain(terrain, numPlayers int) bool {
	switch terrain {
	case TileEmpty, TileMountain, TileUnknown, TileUnknownObstacle:
		return true
	}
	return terrain >= 0 && terrain < numPlayers
}

// TerrainName returns a short human name for a terrain value.
func TerrainName(terrain int) string {
	switch terrain {
	case TileEmpty:
		return "empty"
	case TileMountain:
		return "mountain"
	case TileUnknown:
		return "unknown"
	case TileUnknownObstacle:
		return "unknown_obstacle"
	}
	if terrain >= 0 {
		return "player"
	}
	return "invalid"
}
