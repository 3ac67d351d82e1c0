package normalizer

import (
	"log/slog"

	"edipulse/pkg/contracts/domain"
)

// CrossReference reads an ID to display-name table
func (n *Normalizer) CrossReference(table domain.RawTable) ([]domain.CrossReferenceEntry, []domain.Warning) {
	cols := resolveColumns(table.Header, FieldID, FieldName, FieldRegion)
	if !cols.has(FieldID) {
		return nil, []domain.Warning{tableWarning(table, "cross-reference has no ID column")}
	}

	var entries []domain.CrossReferenceEntry
	var warnings []domain.Warning
	for i, row := range table.Rows {
		id := text(row, cols, FieldID)
		if id == "" {
			warnings = append(warnings, rowWarning(table, table.SourceRow(i), headerAt(table, cols[FieldID]),
				"record dropped: ID is empty"))
			continue
		}
		entries = append(entries, domain.CrossReferenceEntry{
			ID:     id,
			Name:   text(row, cols, FieldName),
			Region: text(row, cols, FieldRegion),
		})
	}

	n.logger.Debug("Normalized cross-reference",
		slog.String("file", table.SourceFile),
		slog.Int("entries", len(entries)))
	return entries, warnings
}

// PartnerReport reads a partner/method report. The mailbox type is the column
// immediately after the method column. Headers that parse as periods are
// per-period volume columns; without any, a single volume column is booked
// to filePeriod.
func (n *Normalizer) PartnerReport(table domain.RawTable, filePeriod string) ([]domain.PartnerReportEntry, []domain.Warning) {
	cols := resolveColumns(table.Header, FieldReportOwner, FieldMethod)
	if !cols.has(FieldReportOwner) {
		return nil, []domain.Warning{tableWarning(table, "partner report has no partner column")}
	}

	mailboxIdx := -1
	if m, ok := cols[FieldMethod]; ok && m+1 < len(table.Header) && m+1 != cols[FieldReportOwner] {
		mailboxIdx = m + 1
	}

	type periodColumn struct {
		idx    int
		period string
	}
	var periodCols []periodColumn
	for i, h := range table.Header {
		if i == mailboxIdx || i == cols[FieldReportOwner] {
			continue
		}
		if m, ok := cols[FieldMethod]; ok && i == m {
			continue
		}
		if p, ok := headerPeriod(h); ok {
			periodCols = append(periodCols, periodColumn{idx: i, period: p})
		}
	}

	volumeIdx := -1
	if len(periodCols) == 0 {
		reserved := map[int]bool{cols[FieldReportOwner]: true, mailboxIdx: true}
		if m, ok := cols[FieldMethod]; ok {
			reserved[m] = true
		}
		if idx, ok := matchHeader(table.Header, fieldAliases[FieldVolume], reserved); ok {
			volumeIdx = idx
		}
		if volumeIdx < 0 {
			return nil, []domain.Warning{tableWarning(table, "partner report has neither period columns nor a volume column")}
		}
		if !domain.IsValidPeriod(filePeriod) {
			return nil, []domain.Warning{tableWarning(table, "partner report has no period columns and no batch period to book volume to")}
		}
	}

	var entries []domain.PartnerReportEntry
	var warnings []domain.Warning
	for i, row := range table.Rows {
		rowNum := table.SourceRow(i)
		partner := text(row, cols, FieldReportOwner)
		if partner == "" {
			warnings = append(warnings, rowWarning(table, rowNum, headerAt(table, cols[FieldReportOwner]),
				"record dropped: partner is empty"))
			continue
		}
		base := domain.PartnerReportEntry{
			Partner:    partner,
			Method:     text(row, cols, FieldMethod),
			SourceFile: table.SourceFile,
			Row:        rowNum,
		}
		if mailboxIdx >= 0 {
			base.MailboxType = cell(row, mailboxIdx).Text
		}

		if len(periodCols) == 0 {
			v, err := parseNumber(cell(row, volumeIdx))
			if err != nil {
				warnings = append(warnings, rowWarning(table, rowNum, headerAt(table, volumeIdx), err.Error()+", using 0"))
			}
			base.Period = filePeriod
			base.Volume = v
			entries = append(entries, base)
			continue
		}

		for _, pc := range periodCols {
			c := cell(row, pc.idx)
			if c.IsEmpty() {
				continue
			}
			v, err := parseNumber(c)
			if err != nil {
				warnings = append(warnings, rowWarning(table, rowNum, headerAt(table, pc.idx), err.Error()+", using 0"))
			}
			entry := base
			entry.Period = pc.period
			entry.Volume = v
			entries = append(entries, entry)
		}
	}

	n.logger.Debug("Normalized partner report",
		slog.String("file", table.SourceFile),
		slog.Int("period_columns", len(periodCols)),
		slog.Int("entries", len(entries)))
	return entries, warnings
}

// MapConfig reads a translation map configuration table
func (n *Normalizer) MapConfig(table domain.RawTable) ([]domain.MapConfigEntry, []domain.Warning) {
	cols := resolveColumns(table.Header, FieldSenderID, FieldReceiverID, FieldDocumentType, FieldMapName, FieldDirection)
	if !cols.has(FieldSenderID) && !cols.has(FieldReceiverID) {
		return nil, []domain.Warning{tableWarning(table, "map configuration has neither sender nor receiver column")}
	}

	var entries []domain.MapConfigEntry
	var warnings []domain.Warning
	for i, row := range table.Rows {
		entry := domain.MapConfigEntry{
			Direction:    normalizeDirection(text(row, cols, FieldDirection)),
			SenderID:     text(row, cols, FieldSenderID),
			ReceiverID:   text(row, cols, FieldReceiverID),
			DocumentType: text(row, cols, FieldDocumentType),
			MapName:      text(row, cols, FieldMapName),
			SourceFile:   table.SourceFile,
			Row:          table.SourceRow(i),
		}
		if entry.SenderID == "" && entry.ReceiverID == "" {
			warnings = append(warnings, rowWarning(table, entry.Row, "", "record dropped: sender and receiver are empty"))
			continue
		}
		entries = append(entries, entry)
	}

	n.logger.Debug("Normalized map configuration",
		slog.String("file", table.SourceFile),
		slog.Int("maps", len(entries)))
	return entries, warnings
}
