package database

import (
	"database/sql"
	"strings"

	"pdnsweb/internal/model"
)

func (db *DB) LogAudit(entry model.AuditEntry) error {
	_, err := db.conn.Exec(
		`INSERT INTO audit_log (username, action, zone_name, record_name, record_type, detail, ip_address)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		entry.Username, entry.Action, entry.ZoneName, entry.RecordName,
		entry.RecordType, entry.Detail, entry.IPAddress,
	)
	return err
}

func (db *DB) ListAuditLog(limit, offset int) ([]model.AuditEntry, int, error) {
	var total int
	_ = db.conn.QueryRow("SELECT COUNT(*) FROM audit_log").Scan(&total)

	rows, err := db.conn.Query(
		`SELECT id, username, action, zone_name, record_name, record_type, detail, ip_address, created_at
		 FROM audit_log ORDER BY created_at DESC LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var entries []model.AuditEntry
	for rows.Next() {
		var e model.AuditEntry
		var zoneName, recordName, recordType, detail sql.NullString
		if err := rows.Scan(&e.ID, &e.Username, &e.Action, &zoneName, &recordName,
			&recordType, &detail, &e.IPAddress, &e.CreatedAt); err != nil {
			return nil, 0, err
		}

		e.ZoneName = zoneName.String
		e.RecordName = recordName.String
		e.RecordType = recordType.String
		e.Detail = detail.String

		// show record owners relative to their zone, "@" for the apex
		if e.ZoneName != "" && e.RecordName != "" {
			zone := strings.TrimSuffix(e.ZoneName, ".")
			rec := strings.TrimSuffix(e.RecordName, ".")
			if rec == zone {
				e.RecordName = "@"
			} else if strings.HasSuffix(rec, "."+zone) {
				e.RecordName = strings.TrimSuffix(rec, "."+zone)
			}
		}

		entries = append(entries, e)
	}
	return entries, total, rows.Err()
}
