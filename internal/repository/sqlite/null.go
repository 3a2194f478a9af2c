package sqlite

import "database/sql"

func nullToPtr(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	s := ns.String
	return &s
}

func ptrToNull(p *string) any {
	if p == nil {
		return nil
	}
	return *p
}
