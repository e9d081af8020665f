package catalog

import (
	"fmt"
)

// dependentClasses are the system catalogs whose rows can depend on user objects.
// Each one is read by its own query so they can run concurrently.
var dependentClasses = []string{
	"pg_class",
	"pg_proc",
	"pg_type",
	"pg_constraint",
	"pg_trigger",
	"pg_attrdef",
	"pg_rewrite",
	"pg_policy",
}

// identitySQL renders an expression that resolves a (classid, objid, objsubid)
// triple to a stable identifier, falling back to an "unknown:" identifier.
func identitySQL(classCol, objCol, subCol string) string {
	return fmt.Sprintf(`COALESCE(CASE
        WHEN %[1]s = 'pg_class'::regclass THEN (
            SELECT CASE
                WHEN %[3]s > 0 AND c.relkind IN ('r', 'p', 'f', 'v', 'm')
                    THEN 'column:' || n.nspname || '.' || c.relname || '.' || a.attname
                WHEN c.relkind IN ('r', 'p', 'f') THEN 'table:' || n.nspname || '.' || c.relname
                WHEN c.relkind = 'v' THEN 'view:' || n.nspname || '.' || c.relname
                WHEN c.relkind = 'm' THEN 'materializedView:' || n.nspname || '.' || c.relname
                WHEN c.relkind = 'S' THEN 'sequence:' || n.nspname || '.' || c.relname
                WHEN c.relkind IN ('i', 'I') THEN 'index:' || n.nspname || '.' || c.relname
                WHEN c.relkind = 'c' THEN 'type:' || n.nspname || '.' || c.relname
            END
            FROM pg_class c
            JOIN pg_namespace n ON n.oid = c.relnamespace
            LEFT JOIN pg_attribute a ON a.attrelid = c.oid AND a.attnum = %[3]s
            WHERE c.oid = %[2]s)
        WHEN %[1]s = 'pg_proc'::regclass THEN (
            SELECT 'procedure:' || n.nspname || '.' || p.proname || '(' ||
                COALESCE((SELECT string_agg(format_type(u.t, NULL), ',' ORDER BY u.ord)
                          FROM unnest(p.proargtypes) WITH ORDINALITY AS u(t, ord)), '') || ')'
            FROM pg_proc p
            JOIN pg_namespace n ON n.oid = p.pronamespace
            WHERE p.oid = %[2]s)
        WHEN %[1]s = 'pg_type'::regclass THEN (
            SELECT CASE
                WHEN t.typtype = 'c' AND rc.relkind <> 'c' THEN
                    CASE rc.relkind
                        WHEN 'v' THEN 'view:'
                        WHEN 'm' THEN 'materializedView:'
                        ELSE 'table:'
                    END || n.nspname || '.' || rc.relname
                ELSE 'type:' || n.nspname || '.' || t.typname
            END
            FROM pg_type t
            JOIN pg_namespace n ON n.oid = t.typnamespace
            LEFT JOIN pg_class rc ON rc.oid = t.typrelid
            WHERE t.oid = %[2]s)
        WHEN %[1]s = 'pg_namespace'::regclass THEN (
            SELECT 'schema:' || n.nspname FROM pg_namespace n WHERE n.oid = %[2]s)
        WHEN %[1]s = 'pg_constraint'::regclass THEN (
            SELECT CASE
                WHEN con.conrelid <> 0 THEN 'constraint:' || n.nspname || '.' || c.relname || '.' || con.conname
                ELSE 'type:' || tn.nspname || '.' || t.typname
            END
            FROM pg_constraint con
            LEFT JOIN pg_class c ON c.oid = con.conrelid
            LEFT JOIN pg_namespace n ON n.oid = c.relnamespace
            LEFT JOIN pg_type t ON t.oid = con.contypid
            LEFT JOIN pg_namespace tn ON tn.oid = t.typnamespace
            WHERE con.oid = %[2]s)
        WHEN %[1]s = 'pg_trigger'::regclass THEN (
            SELECT 'trigger:' || n.nspname || '.' || c.relname || '.' || tg.tgname
            FROM pg_trigger tg
            JOIN pg_class c ON c.oid = tg.tgrelid
            JOIN pg_namespace n ON n.oid = c.relnamespace
            WHERE tg.oid = %[2]s)
        WHEN %[1]s = 'pg_attrdef'::regclass THEN (
            SELECT 'column:' || n.nspname || '.' || c.relname || '.' || a.attname
            FROM pg_attrdef ad
            JOIN pg_class c ON c.oid = ad.adrelid
            JOIN pg_namespace n ON n.oid = c.relnamespace
            JOIN pg_attribute a ON a.attrelid = ad.adrelid AND a.attnum = ad.adnum
            WHERE ad.oid = %[2]s)
        WHEN %[1]s = 'pg_rewrite'::regclass THEN (
            SELECT CASE c.relkind WHEN 'm' THEN 'materializedView:' ELSE 'view:' END
                || n.nspname || '.' || c.relname
            FROM pg_rewrite r
            JOIN pg_class c ON c.oid = r.ev_class
            JOIN pg_namespace n ON n.oid = c.relnamespace
            WHERE r.oid = %[2]s)
        WHEN %[1]s = 'pg_policy'::regclass THEN (
            SELECT 'rlsPolicy:' || n.nspname || '.' || c.relname || '.' || pol.polname
            FROM pg_policy pol
            JOIN pg_class c ON c.oid = pol.polrelid
            JOIN pg_namespace n ON n.oid = c.relnamespace
            WHERE pol.oid = %[2]s)
        WHEN %[1]s = 'pg_extension'::regclass THEN (
            SELECT 'extension:' || e.extname FROM pg_extension e WHERE e.oid = %[2]s)
    END, 'unknown:' || %[1]s::regclass::text || ':' || %[2]s::text)`, classCol, objCol, subCol)
}

// dependencyQuery reads the dependencies of rows in one system catalog. Objects that
// belong to an extension and built-in objects are left out; references to schemas
// are kept because public is a built-in schema objects commonly live in.
var dependencyQuery = fmt.Sprintf(`
SELECT DISTINCT s.dependent, s.referenced, s.deptype
FROM (
    SELECT
        %s AS dependent,
        %s AS referenced,
        d.deptype::text AS deptype
    FROM pg_depend d
    WHERE d.classid::regclass::text = $1
      AND d.deptype IN ('n', 'a', 'i')
      AND d.objid >= 16384
      AND (d.refobjid >= 16384 OR d.refclassid = 'pg_namespace'::regclass)
      AND NOT EXISTS (
          SELECT 1 FROM pg_depend e
          WHERE e.classid = d.classid AND e.objid = d.objid AND e.deptype = 'e')
      AND NOT EXISTS (
          SELECT 1 FROM pg_depend e
          WHERE e.classid = d.refclassid AND e.objid = d.refobjid AND e.deptype = 'e')
) s
WHERE s.dependent <> s.referenced
ORDER BY 1, 2, 3`,
	identitySQL("d.classid", "d.objid", "d.objsubid"),
	identitySQL("d.refclassid", "d.refobjid", "d.refobjsubid"))

// depTypeFromCode maps pg_depend.deptype codes
func depTypeFromCode(code string) (DepType, bool) {
	switch code {
	case "n":
		return DepTypeNormal, true
	case "a":
		return DepTypeAuto, true
	case "i":
		return DepTypeInternal, true
	}
	return "", false
}
