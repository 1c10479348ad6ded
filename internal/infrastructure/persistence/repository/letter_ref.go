package repository

import (
	"database/sql"

	"github.com/uptpik/amanat/internal/domain/entity"
	"github.com/uptpik/amanat/internal/domain/workflow"
)

// refColumn maps a letter reference onto the foreign-key column that holds
// it. Tables referencing letters carry one nullable column per register
// with a CHECK that exactly one is set.
func refColumn(ref entity.LetterRef) string {
	if ref.Direction == workflow.DirectionOutgoing {
		return "outgoing_letter_id"
	}
	return "incoming_letter_id"
}

// refValues splits a reference into the (incoming_letter_id,
// outgoing_letter_id) column pair for INSERTs
func refValues(ref entity.LetterRef) (sql.NullInt64, sql.NullInt64) {
	if ref.Direction == workflow.DirectionOutgoing {
		return sql.NullInt64{}, sql.NullInt64{Int64: ref.ID, Valid: true}
	}
	return sql.NullInt64{Int64: ref.ID, Valid: true}, sql.NullInt64{}
}

// refFromColumns rebuilds a reference from the scanned column pair
func refFromColumns(incomingID, outgoingID sql.NullInt64) entity.LetterRef {
	if outgoingID.Valid {
		return entity.OutgoingRef(outgoingID.Int64)
	}
	return entity.IncomingRef(incomingID.Int64)
}
