// Package postgres provides a pgx-backed storage implementation that
// satisfies the repository and writer interfaces used by the HTTP/API and
// services.
//
// It is intentionally small and explicit. EnsureSchema creates the expected
// tables on startup; the package otherwise focuses on mapping between the
// domain entities and SQL rows. Amounts are stored as bigint minor units in
// the single bookkeeping currency.
package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/govalues/decimal"
	"github.com/govalues/money"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/adilkt/fleetbook/internal/errs"
	"github.com/adilkt/fleetbook/internal/fleet"
)

// Store holds a pgx connection pool and implements the read/write interfaces
// used across the service layer. All methods are safe for concurrent use.
type Store struct {
	pool *pgxpool.Pool
}

// Open establishes a pgx pool using the provided connection string.
func Open(ctx context.Context, dsn string) (*Store, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, err
	}
	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, err
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return &Store{pool: pool}, nil
}

// Close releases the underlying pool.
func (s *Store) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}

// Ready pings the pool to verify connectivity.
func (s *Store) Ready(ctx context.Context) error { return s.pool.Ping(ctx) }

// EnsureSchema creates the tables if they do not exist yet.
func (s *Store) EnsureSchema(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, `
		create table if not exists partners (
			id                  uuid primary key,
			name                text not null,
			email               text not null default '',
			active              boolean not null default true,
			can_manage_users    boolean not null default false,
			can_manage_vehicles boolean not null default false,
			can_import_data     boolean not null default false,
			created_at          timestamptz not null default now()
		);
		create table if not exists vehicles (
			id                  uuid primary key,
			name                text not null,
			registration_number text not null unique,
			color               text not null default '',
			image_path          text not null default '',
			price_per_day_minor bigint not null default 0,
			partner_ids         uuid[] not null default '{}',
			created_at          timestamptz not null default now()
		);
		create table if not exists rentals (
			id            uuid primary key,
			vehicle_id    uuid not null references vehicles(id) on delete cascade,
			partner_id    uuid references partners(id) on delete set null,
			date_out      timestamptz not null,
			time_out      timestamptz,
			date_in       timestamptz,
			time_in       timestamptz,
			customer_name text not null,
			contact_no    text not null default '',
			customer_id   text not null default '',
			care_of       text not null default '',
			destination   text not null default '',
			days_of_rent  text not null default '0',
			rent_per_day_minor          bigint not null default 0,
			advance_amount_minor        bigint not null default 0,
			total_amount_received_minor bigint not null default 0,
			discounted_amount_minor     bigint not null default 0,
			starting_km   bigint,
			ending_km     bigint,
			created_at    timestamptz not null default now()
		);
		create table if not exists expenses (
			id           uuid primary key,
			vehicle_id   uuid not null references vehicles(id) on delete cascade,
			partner_id   uuid references partners(id) on delete set null,
			date         timestamptz not null,
			particulars  text not null,
			place        text not null default '',
			care_of      text not null default '',
			amount_minor bigint not null default 0,
			created_at   timestamptz not null default now()
		);
		create table if not exists taken_amounts (
			id           uuid primary key,
			partner_id   uuid not null references partners(id) on delete cascade,
			vehicle_id   uuid not null references vehicles(id) on delete cascade,
			amount_minor bigint not null,
			date         timestamptz not null,
			created_at   timestamptz not null default now()
		);
		create table if not exists emis (
			id           uuid primary key,
			vehicle_id   uuid not null unique references vehicles(id) on delete cascade,
			amount_minor bigint not null,
			due_day      int not null,
			warning_days int not null,
			active       boolean not null default true,
			created_at   timestamptz not null default now(),
			updated_at   timestamptz not null default now()
		);
		create table if not exists emi_payments (
			id             uuid primary key,
			vehicle_id     uuid not null references vehicles(id) on delete cascade,
			amount_minor   bigint not null,
			date           timestamptz not null,
			month_paid_for date not null,
			remarks        text not null default '',
			created_at     timestamptz not null default now(),
			unique (vehicle_id, month_paid_for)
		);
	`)
	return err
}

// --- mapping helpers ---

func amountFromMinor(v int64) money.Amount {
	a, err := money.NewAmountFromMinorUnits(fleet.Currency, v)
	if err != nil {
		return fleet.ZeroAmount()
	}
	return a
}

func minorUnits(a money.Amount) int64 {
	v, _ := a.MinorUnits()
	return v
}

// nullableUUID maps uuid.Nil to SQL NULL on the way in.
func nullableUUID(id uuid.UUID) *uuid.UUID {
	if id == uuid.Nil {
		return nil
	}
	return &id
}

func fromNullableUUID(id *uuid.UUID) uuid.UUID {
	if id == nil {
		return uuid.Nil
	}
	return *id
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

// --- Partners ---

const partnerCols = `id, name, email, active, can_manage_users, can_manage_vehicles, can_import_data, created_at`

func scanPartner(row pgx.Row) (fleet.Partner, error) {
	var p fleet.Partner
	err := row.Scan(&p.ID, &p.Name, &p.Email, &p.Active, &p.CanManageUsers, &p.CanManageVehicles, &p.CanImportData, &p.CreatedAt)
	return p, err
}

func (s *Store) CreatePartner(ctx context.Context, p fleet.Partner) (fleet.Partner, error) {
	_, err := s.pool.Exec(ctx, `
		insert into partners (`+partnerCols+`)
		values ($1,$2,$3,$4,$5,$6,$7,$8)
	`, p.ID, p.Name, p.Email, p.Active, p.CanManageUsers, p.CanManageVehicles, p.CanImportData, p.CreatedAt)
	if isUniqueViolation(err) {
		return fleet.Partner{}, errs.ErrConflict
	}
	if err != nil {
		return fleet.Partner{}, err
	}
	return p, nil
}

func (s *Store) UpdatePartner(ctx context.Context, p fleet.Partner) (fleet.Partner, error) {
	ct, err := s.pool.Exec(ctx, `
		update partners
		set name=$2, email=$3, active=$4, can_manage_users=$5, can_manage_vehicles=$6, can_import_data=$7
		where id=$1
	`, p.ID, p.Name, p.Email, p.Active, p.CanManageUsers, p.CanManageVehicles, p.CanImportData)
	if err != nil {
		return fleet.Partner{}, err
	}
	if ct.RowsAffected() == 0 {
		return fleet.Partner{}, errs.ErrNotFound
	}
	return p, nil
}

// DeletePartner removes the partner. Rentals and expenses it was attributed
// to are detached by the FK; vehicle stakes are pulled from the arrays here.
func (s *Store) DeletePartner(ctx context.Context, partnerID uuid.UUID) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()
	if _, err := tx.Exec(ctx, `update vehicles set partner_ids = array_remove(partner_ids, $1)`, partnerID); err != nil {
		return err
	}
	ct, err := tx.Exec(ctx, `delete from partners where id=$1`, partnerID)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return errs.ErrNotFound
	}
	return tx.Commit(ctx)
}

func (s *Store) GetPartner(ctx context.Context, partnerID uuid.UUID) (fleet.Partner, error) {
	p, err := scanPartner(s.pool.QueryRow(ctx, `select `+partnerCols+` from partners where id=$1`, partnerID))
	if errors.Is(err, pgx.ErrNoRows) {
		return fleet.Partner{}, errs.ErrNotFound
	}
	return p, err
}

func (s *Store) ListPartners(ctx context.Context) ([]fleet.Partner, error) {
	rows, err := s.pool.Query(ctx, `select `+partnerCols+` from partners order by name, id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]fleet.Partner, 0)
	for rows.Next() {
		p, err := scanPartner(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (s *Store) PartnersByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]fleet.Partner, error) {
	if len(ids) == 0 {
		return map[uuid.UUID]fleet.Partner{}, nil
	}
	rows, err := s.pool.Query(ctx, `select `+partnerCols+` from partners where id = any($1)`, ids)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make(map[uuid.UUID]fleet.Partner)
	for rows.Next() {
		p, err := scanPartner(rows)
		if err != nil {
			return nil, err
		}
		out[p.ID] = p
	}
	return out, rows.Err()
}

// --- Vehicles ---

const vehicleCols = `id, name, registration_number, color, image_path, price_per_day_minor, partner_ids, created_at`

func scanVehicle(row pgx.Row) (fleet.Vehicle, error) {
	var v fleet.Vehicle
	var priceMinor int64
	if err := row.Scan(&v.ID, &v.Name, &v.RegistrationNumber, &v.Color, &v.ImagePath, &priceMinor, &v.PartnerIDs, &v.CreatedAt); err != nil {
		return fleet.Vehicle{}, err
	}
	v.PricePerDay = amountFromMinor(priceMinor)
	return v, nil
}

func (s *Store) CreateVehicle(ctx context.Context, v fleet.Vehicle) (fleet.Vehicle, error) {
	_, err := s.pool.Exec(ctx, `
		insert into vehicles (`+vehicleCols+`)
		values ($1,$2,$3,$4,$5,$6,$7,$8)
	`, v.ID, v.Name, v.RegistrationNumber, v.Color, v.ImagePath, minorUnits(v.PricePerDay), v.PartnerIDs, v.CreatedAt)
	if isUniqueViolation(err) {
		return fleet.Vehicle{}, errs.ErrConflict
	}
	if err != nil {
		return fleet.Vehicle{}, err
	}
	return v, nil
}

func (s *Store) UpdateVehicle(ctx context.Context, v fleet.Vehicle) (fleet.Vehicle, error) {
	ct, err := s.pool.Exec(ctx, `
		update vehicles
		set name=$2, registration_number=$3, color=$4, image_path=$5, price_per_day_minor=$6, partner_ids=$7
		where id=$1
	`, v.ID, v.Name, v.RegistrationNumber, v.Color, v.ImagePath, minorUnits(v.PricePerDay), v.PartnerIDs)
	if isUniqueViolation(err) {
		return fleet.Vehicle{}, errs.ErrConflict
	}
	if err != nil {
		return fleet.Vehicle{}, err
	}
	if ct.RowsAffected() == 0 {
		return fleet.Vehicle{}, errs.ErrNotFound
	}
	return v, nil
}

func (s *Store) DeleteVehicle(ctx context.Context, vehicleID uuid.UUID) error {
	ct, err := s.pool.Exec(ctx, `delete from vehicles where id=$1`, vehicleID)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return errs.ErrNotFound
	}
	return nil
}

func (s *Store) GetVehicle(ctx context.Context, vehicleID uuid.UUID) (fleet.Vehicle, error) {
	v, err := scanVehicle(s.pool.QueryRow(ctx, `select `+vehicleCols+` from vehicles where id=$1`, vehicleID))
	if errors.Is(err, pgx.ErrNoRows) {
		return fleet.Vehicle{}, errs.ErrNotFound
	}
	return v, err
}

func (s *Store) ListVehicles(ctx context.Context) ([]fleet.Vehicle, error) {
	return s.queryVehicles(ctx, `select `+vehicleCols+` from vehicles order by name, id`)
}

func (s *Store) VehiclesByPartner(ctx context.Context, partnerID uuid.UUID) ([]fleet.Vehicle, error) {
	return s.queryVehicles(ctx, `select `+vehicleCols+` from vehicles where $1 = any(partner_ids) order by name, id`, partnerID)
}

func (s *Store) queryVehicles(ctx context.Context, sql string, args ...any) ([]fleet.Vehicle, error) {
	rows, err := s.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]fleet.Vehicle, 0)
	for rows.Next() {
		v, err := scanVehicle(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, rows.Err()
}

// --- Rentals ---

const rentalCols = `id, vehicle_id, partner_id, date_out, time_out, date_in, time_in,
	customer_name, contact_no, customer_id, care_of, destination, days_of_rent,
	rent_per_day_minor, advance_amount_minor, total_amount_received_minor, discounted_amount_minor,
	starting_km, ending_km, created_at`

func scanRental(row pgx.Row) (fleet.Rental, error) {
	var r fleet.Rental
	var partnerID *uuid.UUID
	var days string
	var rentMinor, advMinor, recvMinor, discMinor int64
	err := row.Scan(&r.ID, &r.VehicleID, &partnerID, &r.DateOut, &r.TimeOut, &r.DateIn, &r.TimeIn,
		&r.CustomerName, &r.ContactNo, &r.CustomerID, &r.CareOf, &r.Destination, &days,
		&rentMinor, &advMinor, &recvMinor, &discMinor,
		&r.StartingKM, &r.EndingKM, &r.CreatedAt)
	if err != nil {
		return fleet.Rental{}, err
	}
	r.PartnerID = fromNullableUUID(partnerID)
	if d, err := decimal.Parse(days); err == nil {
		r.DaysOfRent = d
	}
	r.RentPerDay = amountFromMinor(rentMinor)
	r.AdvanceAmount = amountFromMinor(advMinor)
	r.TotalAmountReceived = amountFromMinor(recvMinor)
	r.DiscountedAmount = amountFromMinor(discMinor)
	return r, nil
}

func (s *Store) CreateRental(ctx context.Context, r fleet.Rental) (fleet.Rental, error) {
	_, err := s.pool.Exec(ctx, `
		insert into rentals (`+rentalCols+`)
		values ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,$19,$20)
	`, r.ID, r.VehicleID, nullableUUID(r.PartnerID), r.DateOut, r.TimeOut, r.DateIn, r.TimeIn,
		r.CustomerName, r.ContactNo, r.CustomerID, r.CareOf, r.Destination, r.DaysOfRent.String(),
		minorUnits(r.RentPerDay), minorUnits(r.AdvanceAmount), minorUnits(r.TotalAmountReceived), minorUnits(r.DiscountedAmount),
		r.StartingKM, r.EndingKM, r.CreatedAt)
	if err != nil {
		return fleet.Rental{}, err
	}
	return r, nil
}

func (s *Store) UpdateRental(ctx context.Context, r fleet.Rental) (fleet.Rental, error) {
	ct, err := s.pool.Exec(ctx, `
		update rentals
		set partner_id=$2, date_out=$3, time_out=$4, date_in=$5, time_in=$6,
			customer_name=$7, contact_no=$8, customer_id=$9, care_of=$10, destination=$11,
			days_of_rent=$12, rent_per_day_minor=$13, advance_amount_minor=$14,
			total_amount_received_minor=$15, discounted_amount_minor=$16,
			starting_km=$17, ending_km=$18
		where id=$1
	`, r.ID, nullableUUID(r.PartnerID), r.DateOut, r.TimeOut, r.DateIn, r.TimeIn,
		r.CustomerName, r.ContactNo, r.CustomerID, r.CareOf, r.Destination,
		r.DaysOfRent.String(), minorUnits(r.RentPerDay), minorUnits(r.AdvanceAmount),
		minorUnits(r.TotalAmountReceived), minorUnits(r.DiscountedAmount),
		r.StartingKM, r.EndingKM)
	if err != nil {
		return fleet.Rental{}, err
	}
	if ct.RowsAffected() == 0 {
		return fleet.Rental{}, errs.ErrNotFound
	}
	return r, nil
}

func (s *Store) DeleteRental(ctx context.Context, rentalID uuid.UUID) error {
	ct, err := s.pool.Exec(ctx, `delete from rentals where id=$1`, rentalID)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return errs.ErrNotFound
	}
	return nil
}

func (s *Store) GetRental(ctx context.Context, rentalID uuid.UUID) (fleet.Rental, error) {
	r, err := scanRental(s.pool.QueryRow(ctx, `select `+rentalCols+` from rentals where id=$1`, rentalID))
	if errors.Is(err, pgx.ErrNoRows) {
		return fleet.Rental{}, errs.ErrNotFound
	}
	return r, err
}

func (s *Store) ListRentals(ctx context.Context) ([]fleet.Rental, error) {
	return s.queryRentals(ctx, `select `+rentalCols+` from rentals order by date_out, id`)
}

func (s *Store) RentalsByVehicle(ctx context.Context, vehicleID uuid.UUID) ([]fleet.Rental, error) {
	return s.queryRentals(ctx, `select `+rentalCols+` from rentals where vehicle_id=$1 order by date_out, id`, vehicleID)
}

func (s *Store) RentalsByPartner(ctx context.Context, partnerID uuid.UUID) ([]fleet.Rental, error) {
	return s.queryRentals(ctx, `select `+rentalCols+` from rentals where partner_id=$1 order by date_out, id`, partnerID)
}

func (s *Store) queryRentals(ctx context.Context, sql string, args ...any) ([]fleet.Rental, error) {
	rows, err := s.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]fleet.Rental, 0)
	for rows.Next() {
		r, err := scanRental(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// --- Expenses ---

const expenseCols = `id, vehicle_id, partner_id, date, particulars, place, care_of, amount_minor, created_at`

func scanExpense(row pgx.Row) (fleet.Expense, error) {
	var e fleet.Expense
	var partnerID *uuid.UUID
	var amountMinor int64
	err := row.Scan(&e.ID, &e.VehicleID, &partnerID, &e.Date, &e.Particulars, &e.Place, &e.CareOf, &amountMinor, &e.CreatedAt)
	if err != nil {
		return fleet.Expense{}, err
	}
	e.PartnerID = fromNullableUUID(partnerID)
	e.Amount = amountFromMinor(amountMinor)
	return e, nil
}

func (s *Store) CreateExpense(ctx context.Context, e fleet.Expense) (fleet.Expense, error) {
	_, err := s.pool.Exec(ctx, `
		insert into expenses (`+expenseCols+`)
		values ($1,$2,$3,$4,$5,$6,$7,$8,$9)
	`, e.ID, e.VehicleID, nullableUUID(e.PartnerID), e.Date, e.Particulars, e.Place, e.CareOf, minorUnits(e.Amount), e.CreatedAt)
	if err != nil {
		return fleet.Expense{}, err
	}
	return e, nil
}

func (s *Store) UpdateExpense(ctx context.Context, e fleet.Expense) (fleet.Expense, error) {
	ct, err := s.pool.Exec(ctx, `
		update expenses
		set partner_id=$2, date=$3, particulars=$4, place=$5, care_of=$6, amount_minor=$7
		where id=$1
	`, e.ID, nullableUUID(e.PartnerID), e.Date, e.Particulars, e.Place, e.CareOf, minorUnits(e.Amount))
	if err != nil {
		return fleet.Expense{}, err
	}
	if ct.RowsAffected() == 0 {
		return fleet.Expense{}, errs.ErrNotFound
	}
	return e, nil
}

func (s *Store) DeleteExpense(ctx context.Context, expenseID uuid.UUID) error {
	ct, err := s.pool.Exec(ctx, `delete from expenses where id=$1`, expenseID)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return errs.ErrNotFound
	}
	return nil
}

func (s *Store) GetExpense(ctx context.Context, expenseID uuid.UUID) (fleet.Expense, error) {
	e, err := scanExpense(s.pool.QueryRow(ctx, `select `+expenseCols+` from expenses where id=$1`, expenseID))
	if errors.Is(err, pgx.ErrNoRows) {
		return fleet.Expense{}, errs.ErrNotFound
	}
	return e, err
}

func (s *Store) ListExpenses(ctx context.Context) ([]fleet.Expense, error) {
	return s.queryExpenses(ctx, `select `+expenseCols+` from expenses order by date, id`)
}

func (s *Store) ExpensesByVehicle(ctx context.Context, vehicleID uuid.UUID) ([]fleet.Expense, error) {
	return s.queryExpenses(ctx, `select `+expenseCols+` from expenses where vehicle_id=$1 order by date, id`, vehicleID)
}

func (s *Store) ExpensesByPartner(ctx context.Context, partnerID uuid.UUID) ([]fleet.Expense, error) {
	return s.queryExpenses(ctx, `select `+expenseCols+` from expenses where partner_id=$1 order by date, id`, partnerID)
}

func (s *Store) queryExpenses(ctx context.Context, sql string, args ...any) ([]fleet.Expense, error) {
	rows, err := s.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]fleet.Expense, 0)
	for rows.Next() {
		e, err := scanExpense(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// --- Taken amounts ---

func (s *Store) CreateTakenAmount(ctx context.Context, t fleet.TakenAmount) (fleet.TakenAmount, error) {
	_, err := s.pool.Exec(ctx, `
		insert into taken_amounts (id, partner_id, vehicle_id, amount_minor, date, created_at)
		values ($1,$2,$3,$4,$5,$6)
	`, t.ID, t.PartnerID, t.VehicleID, minorUnits(t.Amount), t.Date, t.CreatedAt)
	if err != nil {
		return fleet.TakenAmount{}, err
	}
	return t, nil
}

func (s *Store) TakenAmountsByPartner(ctx context.Context, partnerID uuid.UUID) ([]fleet.TakenAmount, error) {
	rows, err := s.pool.Query(ctx, `
		select id, partner_id, vehicle_id, amount_minor, date, created_at
		from taken_amounts where partner_id=$1 order by date, id
	`, partnerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]fleet.TakenAmount, 0)
	for rows.Next() {
		var t fleet.TakenAmount
		var amountMinor int64
		if err := rows.Scan(&t.ID, &t.PartnerID, &t.VehicleID, &amountMinor, &t.Date, &t.CreatedAt); err != nil {
			return nil, err
		}
		t.Amount = amountFromMinor(amountMinor)
		out = append(out, t)
	}
	return out, rows.Err()
}

// --- EMI ---

// UpsertEMI keeps the one-config-per-vehicle invariant in the unique index.
func (s *Store) UpsertEMI(ctx context.Context, e fleet.EMI) (fleet.EMI, error) {
	row := s.pool.QueryRow(ctx, `
		insert into emis (id, vehicle_id, amount_minor, due_day, warning_days, active, created_at, updated_at)
		values ($1,$2,$3,$4,$5,$6,$7,$8)
		on conflict (vehicle_id) do update
		set amount_minor=excluded.amount_minor, due_day=excluded.due_day,
			warning_days=excluded.warning_days, active=excluded.active,
			updated_at=excluded.updated_at
		returning id, created_at
	`, e.ID, e.VehicleID, minorUnits(e.Amount), e.DueDay, e.WarningDays, e.Active, e.CreatedAt, e.UpdatedAt)
	if err := row.Scan(&e.ID, &e.CreatedAt); err != nil {
		return fleet.EMI{}, err
	}
	return e, nil
}

func (s *Store) EMIByVehicle(ctx context.Context, vehicleID uuid.UUID) (fleet.EMI, error) {
	var e fleet.EMI
	var amountMinor int64
	err := s.pool.QueryRow(ctx, `
		select id, vehicle_id, amount_minor, due_day, warning_days, active, created_at, updated_at
		from emis where vehicle_id=$1
	`, vehicleID).Scan(&e.ID, &e.VehicleID, &amountMinor, &e.DueDay, &e.WarningDays, &e.Active, &e.CreatedAt, &e.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return fleet.EMI{}, errs.ErrNotFound
	}
	if err != nil {
		return fleet.EMI{}, err
	}
	e.Amount = amountFromMinor(amountMinor)
	return e, nil
}

func (s *Store) CreateEMIPayment(ctx context.Context, p fleet.EMIPayment) (fleet.EMIPayment, error) {
	_, err := s.pool.Exec(ctx, `
		insert into emi_payments (id, vehicle_id, amount_minor, date, month_paid_for, remarks, created_at)
		values ($1,$2,$3,$4,$5,$6,$7)
	`, p.ID, p.VehicleID, minorUnits(p.Amount), p.Date, p.MonthPaidFor.Time(), p.Remarks, p.CreatedAt)
	if isUniqueViolation(err) {
		return fleet.EMIPayment{}, errs.ErrConflict
	}
	if err != nil {
		return fleet.EMIPayment{}, err
	}
	return p, nil
}

func (s *Store) EMIPaymentsByVehicle(ctx context.Context, vehicleID uuid.UUID) ([]fleet.EMIPayment, error) {
	rows, err := s.pool.Query(ctx, `
		select id, vehicle_id, amount_minor, date, month_paid_for, remarks, created_at
		from emi_payments where vehicle_id=$1 order by month_paid_for, id
	`, vehicleID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]fleet.EMIPayment, 0)
	for rows.Next() {
		p, err := scanEMIPayment(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (s *Store) EMIPaymentForMonth(ctx context.Context, vehicleID uuid.UUID, month fleet.Month) (fleet.EMIPayment, bool, error) {
	p, err := scanEMIPayment(s.pool.QueryRow(ctx, `
		select id, vehicle_id, amount_minor, date, month_paid_for, remarks, created_at
		from emi_payments where vehicle_id=$1 and month_paid_for=$2
	`, vehicleID, month.Time()))
	if errors.Is(err, pgx.ErrNoRows) {
		return fleet.EMIPayment{}, false, nil
	}
	if err != nil {
		return fleet.EMIPayment{}, false, err
	}
	return p, true, nil
}

func scanEMIPayment(row pgx.Row) (fleet.EMIPayment, error) {
	var p fleet.EMIPayment
	var amountMinor int64
	var monthPaidFor time.Time
	err := row.Scan(&p.ID, &p.VehicleID, &amountMinor, &p.Date, &monthPaidFor, &p.Remarks, &p.CreatedAt)
	if err != nil {
		return fleet.EMIPayment{}, err
	}
	p.Amount = amountFromMinor(amountMinor)
	p.MonthPaidFor = fleet.MonthOf(monthPaidFor)
	return p, nil
}
