package queries

import "fmt"

// ProviderKindQuerySet holds the SQL for one license-bearing provider kind.
// The three kinds share identical shapes over different tables/columns, so the
// set is built once per kind descriptor instead of triplicating the SQL.
type ProviderKindQuerySet struct {
	FindExpired      string
	FindExpiringSoon string
	Suspend          string
}

// providerQueryDescriptor names the table and license columns of one kind
type providerQueryDescriptor struct {
	Table         string
	LicenseNumber string
	LicenseExpiry string
}

func buildProviderQuerySet(d providerQueryDescriptor) ProviderKindQuerySet {
	return ProviderKindQuerySet{
		/**
		 * Expired licenses not yet suspended, owner contact resolved via LEFT JOIN
		 * (unresolvable owner yields empty email/name, not an error).
		 * Params: $1 = cutoff timestamp (now)
		 */
		FindExpired: fmt.Sprintf(`
			SELECT
				p.id,
				COALESCE(p.%s, ''),
				p.%s,
				p.status,
				COALESCE(u.email, ''),
				COALESCE(NULLIF(TRIM(CONCAT(u.first_name, ' ', u.last_name)), ''), '')
			FROM %s p
			LEFT JOIN users u ON u.id = p.user_id
			WHERE p.%s IS NOT NULL
			  AND p.%s <= $1
			  AND p.status <> 'suspended'
			ORDER BY p.%s ASC
		`, d.LicenseNumber, d.LicenseExpiry, d.Table, d.LicenseExpiry, d.LicenseExpiry, d.LicenseExpiry),

		/**
		 * Active licenses expiring strictly within ($1, $2].
		 * Params: $1 = window start (now), $2 = window end (now + days)
		 */
		FindExpiringSoon: fmt.Sprintf(`
			SELECT
				p.id,
				COALESCE(p.%s, ''),
				p.%s,
				COALESCE(u.email, ''),
				COALESCE(NULLIF(TRIM(CONCAT(u.first_name, ' ', u.last_name)), ''), '')
			FROM %s p
			LEFT JOIN users u ON u.id = p.user_id
			WHERE p.%s IS NOT NULL
			  AND p.%s > $1
			  AND p.%s <= $2
			  AND p.status = 'active'
			ORDER BY p.%s ASC
		`, d.LicenseNumber, d.LicenseExpiry, d.Table, d.LicenseExpiry, d.LicenseExpiry, d.LicenseExpiry, d.LicenseExpiry),

		/**
		 * Suspension transition, keyed by provider id. Guarded so an already
		 * suspended provider is never rewritten (active → suspended only).
		 * Params: $1 = provider id, $2 = suspension reason, $3 = suspension timestamp
		 */
		Suspend: fmt.Sprintf(`
			UPDATE %s
			SET
				status = 'suspended',
				suspension_reason = $2,
				suspended_at = $3,
				updated_at = NOW()
			WHERE id = $1
			  AND status <> 'suspended'
		`, d.Table),
	}
}

// ProviderExpiryQueries groups the per-kind query sets for the expiry sweep
var ProviderExpiryQueries = struct {
	Doctor     ProviderKindQuerySet
	Pharmacy   ProviderKindQuerySet
	Laboratory ProviderKindQuerySet
}{
	Doctor: buildProviderQuerySet(providerQueryDescriptor{
		Table:         "doctor_profiles",
		LicenseNumber: "mdcn_license_number",
		LicenseExpiry: "mdcn_expiry_date",
	}),
	Pharmacy: buildProviderQuerySet(providerQueryDescriptor{
		Table:         "pharmacy_profiles",
		LicenseNumber: "pcn_license_number",
		LicenseExpiry: "pcn_expiry_date",
	}),
	Laboratory: buildProviderQuerySet(providerQueryDescriptor{
		Table:         "laboratory_profiles",
		LicenseNumber: "mlscn_license_number",
		LicenseExpiry: "mlscn_expiry_date",
	}),
}
