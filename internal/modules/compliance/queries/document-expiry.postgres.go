package queries

// DocumentExpiryQueries groups the SQL for the approved-document category
var DocumentExpiryQueries = struct {
	FindExpired string
	MarkExpired string
}{
	/**
	 * Approved documents whose expiry has passed, owner contact resolved via
	 * LEFT JOIN (unresolvable owner yields empty email/name, not an error).
	 * Params: $1 = cutoff timestamp (now)
	 */
	FindExpired: `
		SELECT
			d.id,
			d.owner_id,
			d.document_type,
			d.expiry_date,
			d.verification_status,
			COALESCE(u.email, ''),
			COALESCE(NULLIF(TRIM(CONCAT(u.first_name, ' ', u.last_name)), ''), '')
		FROM provider_documents d
		LEFT JOIN users u ON u.id = d.owner_id
		WHERE d.verification_status = 'approved'
		  AND d.expiry_date IS NOT NULL
		  AND d.expiry_date <= $1
		ORDER BY d.expiry_date ASC
	`,

	/**
	 * Expiry transition scoped to the single expired document, approved → expired
	 * only. Owners with several approved documents keep the others untouched.
	 * Params: $1 = document id
	 */
	MarkExpired: `
		UPDATE provider_documents
		SET
			verification_status = 'expired',
			updated_at = NOW()
		WHERE id = $1
		  AND verification_status = 'approved'
	`,
}
