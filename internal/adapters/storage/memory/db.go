package memory

import (
	"sync"

	"visitasegura/internal/domain/operators"
	"visitasegura/internal/domain/persons"
	"visitasegura/internal/domain/places"
	"visitasegura/internal/domain/visits"
)

// numPersonShards reparte los locks por persona; personas distintas
// casi nunca comparten shard.
const numPersonShards = 128

// DB es el estado en memoria compartido por todos los repos.
// mu protege los mapas; los shards serializan las transacciones por persona.
type DB struct {
	mu sync.RWMutex

	persons map[int64]persons.Person
	byRUT   map[string]int64

	places    map[int64]places.Place
	operators map[int64]operators.Operator

	visits map[int64]visits.Visit
	open   map[int64]int64 // persona -> visita abierta

	lastPerson, lastPlace, lastOperator, lastVisit int64

	shards [numPersonShards]sync.Mutex
}

func NewDB() *DB {
	return &DB{
		persons:   make(map[int64]persons.Person),
		byRUT:     make(map[string]int64),
		places:    make(map[int64]places.Place),
		operators: make(map[int64]operators.Operator),
		visits:    make(map[int64]visits.Visit),
		open:      make(map[int64]int64),
	}
}

func (db *DB) shard(personID int64) *sync.Mutex {
	return &db.shards[uint64(personID)%numPersonShards]
}

func (db *DB) nextVisitID() int64 {
	db.mu.Lock()
	defer db.mu.Unlock()
	db.lastVisit++
	return db.lastVisit
}
