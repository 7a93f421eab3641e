package staged

import "strconv"

const tempPrefix = "temp-"

// ID identifica un elemento de la colección: o es temporal (todavía no existe
// en el servidor) o es el id emitido por el servidor.
type ID struct {
	temp   uint64
	server string
}

func Temporary(n uint64) ID { return ID{temp: n} }

func Persisted(serverID string) ID { return ID{server: serverID} }

func (id ID) IsTemporary() bool { return id.server == "" && id.temp != 0 }

func (id ID) IsZero() bool { return id.server == "" && id.temp == 0 }

// Server devuelve el id del servidor; ok es false para ids temporales.
func (id ID) Server() (string, bool) {
	if id.server == "" {
		return "", false
	}
	return id.server, true
}

func (id ID) String() string {
	if id.IsTemporary() {
		return tempPrefix + strconv.FormatUint(id.temp, 10)
	}
	return id.server
}

// ParseID interpreta la forma textual de String(): "temp-<n>" o un id del servidor.
func ParseID(s string) ID {
	if len(s) > len(tempPrefix) && s[:len(tempPrefix)] == tempPrefix {
		if n, err := strconv.ParseUint(s[len(tempPrefix):], 10, 64); err == nil && n != 0 {
			return Temporary(n)
		}
	}
	return Persisted(s)
}
