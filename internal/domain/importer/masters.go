package importer

import (
	"context"
	"strings"

	"github.com/shopspring/decimal"

	"ledgerbook/internal/core/apperror"
	"ledgerbook/internal/core/entity"
	"ledgerbook/internal/core/id"
	"ledgerbook/internal/core/types"
	"ledgerbook/internal/domain/importer/tallyxml"
	"ledgerbook/pkg/logger"
)

// lookup returns the record under key, or false when there is none.
func lookup[T any](
	ctx context.Context,
	get func(context.Context, id.ID, string) (T, error),
	companyID id.ID,
	key string,
) (T, bool, error) {
	v, err := get(ctx, companyID, key)
	if err != nil {
		var zero T
		if apperror.IsNotFound(err) {
			return zero, false, nil
		}
		return zero, false, err
	}
	return v, true, nil
}

type hierarchyNode interface {
	Name() string
	ParentName() string
}

// parentsFirst orders nodes so that a node declared in the batch comes after
// its declared parent. Nodes caught in a parent cycle keep their input order
// at the end.
func parentsFirst[T hierarchyNode](nodes []T) []T {
	waiting := make(map[string]bool, len(nodes))
	for _, n := range nodes {
		waiting[n.Name()] = true
	}

	ordered := make([]T, 0, len(nodes))
	pending := nodes
	for len(pending) > 0 {
		var next []T
		for _, n := range pending {
			parent := n.ParentName()
			if parent != "" && parent != n.Name() && waiting[parent] {
				next = append(next, n)
				continue
			}
			ordered = append(ordered, n)
			delete(waiting, n.Name())
		}
		if len(next) == len(pending) {
			return append(ordered, next...)
		}
		pending = next
	}
	return ordered
}

// newNodes drops unnamed, root, repeated and already stored records.
func newNodes[T hierarchyNode](
	ctx context.Context,
	b *batch,
	kind tallyxml.Kind,
	nodes []T,
	exists func(ctx context.Context, name string) (bool, error),
	skipped *int,
) []T {
	seen := make(map[string]bool, len(nodes))
	out := make([]T, 0, len(nodes))
	for _, n := range nodes {
		name := n.Name()
		switch {
		case name == "":
			b.summary.fail(Failure{Kind: kind}, apperror.NewImportParse(strings.ToUpper(string(kind)), "record has no name"))
			continue
		case strings.EqualFold(name, entity.PrimaryGroupName):
			continue
		case seen[name]:
			*skipped++
			continue
		}
		seen[name] = true

		found, err := exists(ctx, name)
		if err != nil {
			b.summary.fail(Failure{Kind: kind, Name: name}, err)
			continue
		}
		if found {
			*skipped++
			continue
		}
		out = append(out, n)
	}
	return out
}

func (s *Service) importGroups(ctx context.Context, b *batch, groups []*tallyxml.Group) {
	exists := func(ctx context.Context, name string) (bool, error) {
		_, ok, err := lookup(ctx, s.masters.Groups.GetByKey, b.companyID, name)
		return ok, err
	}
	for _, g := range parentsFirst(newNodes(ctx, b, tallyxml.KindGroup, groups, exists, &b.summary.Skipped.Groups)) {
		if err := s.createGroup(ctx, b, g); err != nil {
			logger.Warn(ctx, "group import failed", "name", g.Name(), "error", err)
			b.summary.fail(Failure{Kind: tallyxml.KindGroup, Name: g.Name()}, err)
		}
	}
}

func (s *Service) createGroup(ctx context.Context, b *batch, g *tallyxml.Group) error {
	var parent *entity.Group
	if name := g.ParentName(); name != "" {
		p, ok, err := lookup(ctx, s.masters.Groups.GetByKey, b.companyID, name)
		if err != nil {
			return err
		}
		if !ok {
			// Predefined parents are absent from exports; create them on demand.
			if nature, reserved := tallyxml.ReservedNature(name); reserved {
				if p, err = s.ensureGroup(ctx, b.companyID, name, nature, &b.summary.Created); err != nil {
					return err
				}
				ok = true
			}
		}
		if ok {
			parent = p
		}
	}

	grp := entity.NewGroup(b.companyID, g.Name(), groupNature(g, parent))
	if parent != nil {
		grp.ParentID = &parent.ID
	}
	if err := s.masters.Groups.Create(ctx, grp); err != nil {
		return err
	}
	b.summary.Created.Groups++
	return nil
}

// groupNature resolves a nature from the reserved name, the parent, the
// revenue flags, then falls back to LIABILITY.
func groupNature(g *tallyxml.Group, parent *entity.Group) entity.Nature {
	if n, ok := tallyxml.ReservedNature(g.Name()); ok {
		return n
	}
	if n, ok := tallyxml.ReservedNature(g.ReservedName); ok {
		return n
	}
	if parent != nil {
		return parent.Nature
	}
	if n, ok := tallyxml.ReservedNature(g.ParentName()); ok {
		return n
	}
	if n, ok := g.FlagNature(); ok {
		return n
	}
	return entity.NatureLiability
}

// ensureGroup returns the named group, creating it with nature when missing.
func (s *Service) ensureGroup(
	ctx context.Context,
	companyID id.ID,
	name string,
	nature entity.Nature,
	created *Counts,
) (*entity.Group, error) {
	g, ok, err := lookup(ctx, s.masters.Groups.GetByKey, companyID, name)
	if err != nil || ok {
		return g, err
	}
	g = entity.NewGroup(companyID, name, nature)
	if err := s.masters.Groups.Create(ctx, g); err != nil {
		return nil, err
	}
	created.Groups++
	return g, nil
}

func (s *Service) importStockGroups(ctx context.Context, b *batch, groups []*tallyxml.StockGroup) {
	exists := func(ctx context.Context, name string) (bool, error) {
		_, ok, err := lookup(ctx, s.masters.StockGroups.GetByKey, b.companyID, name)
		return ok, err
	}
	for _, g := range parentsFirst(newNodes(ctx, b, tallyxml.KindStockGroup, groups, exists, &b.summary.Skipped.StockGroups)) {
		sg := entity.NewStockGroup(b.companyID, g.Name())
		if name := g.ParentName(); name != "" {
			p, ok, err := lookup(ctx, s.masters.StockGroups.GetByKey, b.companyID, name)
			if err != nil {
				b.summary.fail(Failure{Kind: tallyxml.KindStockGroup, Name: g.Name()}, err)
				continue
			}
			if ok {
				sg.ParentID = &p.ID
			}
		}
		if err := s.masters.StockGroups.Create(ctx, sg); err != nil {
			logger.Warn(ctx, "stock group import failed", "name", g.Name(), "error", err)
			b.summary.fail(Failure{Kind: tallyxml.KindStockGroup, Name: g.Name()}, err)
			continue
		}
		b.summary.Created.StockGroups++
	}
}

func (s *Service) importLedger(ctx context.Context, b *batch, l *tallyxml.Ledger) {
	name := l.Name()
	f := Failure{Kind: tallyxml.KindLedger, Name: name}
	if name == "" {
		b.summary.fail(f, apperror.NewImportParse("LEDGER", "record has no name"))
		return
	}
	_, ok, err := lookup(ctx, s.masters.Ledgers.GetByKey, b.companyID, name)
	if err != nil {
		b.summary.fail(f, err)
		return
	}
	if ok {
		b.summary.Skipped.Ledgers++
		return
	}

	amount, err := tallyxml.ParseNumber(l.OpeningBalance)
	if err != nil {
		b.summary.fail(f, apperror.NewImportParse("OPENINGBALANCE", err.Error()))
		return
	}

	var created Counts
	err = s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		grp, err := s.ledgerGroup(ctx, b.companyID, name, l.ParentName(), &created)
		if err != nil {
			return err
		}
		if err := s.masters.Ledgers.Create(ctx, entity.NewLedger(b.companyID, grp.ID, name, types.FromExternal(amount))); err != nil {
			return err
		}
		created.Ledgers++
		return nil
	})
	if err != nil {
		logger.Warn(ctx, "ledger import failed", "name", name, "error", err)
		b.summary.fail(f, err)
		return
	}
	b.summary.Created.add(created)
}

// ledgerGroup picks the group for an imported ledger. Unknown parents end up
// under the suspense group.
func (s *Service) ledgerGroup(
	ctx context.Context,
	companyID id.ID,
	ledgerName, parentName string,
	created *Counts,
) (*entity.Group, error) {
	if isProfitAndLoss(ledgerName) {
		for _, name := range []string{entity.PrimaryGroupName, entity.CapitalGroupName} {
			g, ok, err := lookup(ctx, s.masters.Groups.GetByKey, companyID, name)
			if err != nil || ok {
				return g, err
			}
		}
		return s.ensureGroup(ctx, companyID, entity.SuspenseGroupName, entity.NatureLiability, created)
	}

	if parentName != "" {
		g, ok, err := lookup(ctx, s.masters.Groups.GetByKey, companyID, parentName)
		if err != nil || ok {
			return g, err
		}
		if nature, reserved := tallyxml.ReservedNature(parentName); reserved {
			return s.ensureGroup(ctx, companyID, parentName, nature, created)
		}
	}
	return s.ensureGroup(ctx, companyID, entity.SuspenseGroupName, entity.NatureLiability, created)
}

// isProfitAndLoss matches the export's profit and loss ledger under its
// usual spellings.
func isProfitAndLoss(name string) bool {
	n := strings.ToLower(name)
	return strings.Contains(n, "profit") && strings.Contains(n, "loss")
}

func (s *Service) importUnit(ctx context.Context, b *batch, u *tallyxml.Unit) {
	symbol := u.Name()
	f := Failure{Kind: tallyxml.KindUnit, Name: symbol}
	if symbol == "" {
		b.summary.fail(f, apperror.NewImportParse("UNIT", "record has no name"))
		return
	}
	_, ok, err := lookup(ctx, s.masters.Units.GetByKey, b.companyID, symbol)
	if err != nil {
		b.summary.fail(f, err)
		return
	}
	if ok {
		b.summary.Skipped.Units++
		return
	}
	if err := s.masters.Units.Create(ctx, entity.NewUnit(b.companyID, symbol, u.OriginalName)); err != nil {
		logger.Warn(ctx, "unit import failed", "name", symbol, "error", err)
		b.summary.fail(f, err)
		return
	}
	b.summary.Created.Units++
}

func (s *Service) importStockItem(ctx context.Context, b *batch, it *tallyxml.StockItem) {
	name := it.Name()
	f := Failure{Kind: tallyxml.KindStockItem, Name: name}
	if name == "" {
		b.summary.fail(f, apperror.NewImportParse("STOCKITEM", "record has no name"))
		return
	}
	_, ok, err := lookup(ctx, s.masters.StockItems.GetByKey, b.companyID, name)
	if err != nil {
		b.summary.fail(f, err)
		return
	}
	if ok {
		b.summary.Skipped.StockItems++
		return
	}

	item, err := s.newStockItem(ctx, b.companyID, it)
	if err != nil {
		b.summary.fail(f, err)
		return
	}
	if err := s.masters.StockItems.Create(ctx, item); err != nil {
		logger.Warn(ctx, "stock item import failed", "name", name, "error", err)
		b.summary.fail(f, err)
		return
	}
	b.summary.Created.StockItems++
}

// newStockItem builds an item from its export record. Stock group and unit
// are linked only when they already exist.
func (s *Service) newStockItem(ctx context.Context, companyID id.ID, it *tallyxml.StockItem) (*entity.StockItem, error) {
	qty, err := tallyxml.ParseNumber(it.OpeningBalance)
	if err != nil {
		return nil, apperror.NewImportParse("OPENINGBALANCE", err.Error())
	}
	value, err := tallyxml.ParseNumber(it.OpeningValue)
	if err != nil {
		return nil, apperror.NewImportParse("OPENINGVALUE", err.Error())
	}
	qty, value = qty.Abs(), value.Abs()
	if value.IsZero() && qty.IsPositive() {
		rate, err := tallyxml.ParseNumber(it.OpeningRate)
		if err != nil {
			return nil, apperror.NewImportParse("OPENINGRATE", err.Error())
		}
		value = qty.Mul(rate.Abs())
	}
	gst, err := tallyxml.ParseNumber(it.IntegratedGSTRate())
	if err != nil {
		return nil, apperror.NewImportParse("GSTRATE", err.Error())
	}

	item := entity.NewStockItem(companyID, it.Name(), qty, value)
	item.GSTRate = gst.Abs()

	if name := it.ParentName(); name != "" {
		g, ok, err := lookup(ctx, s.masters.StockGroups.GetByKey, companyID, name)
		if err != nil {
			return nil, err
		}
		if ok {
			item.StockGroupID = &g.ID
		}
	}
	if symbol := strings.TrimSpace(it.BaseUnits); symbol != "" {
		u, ok, err := lookup(ctx, s.masters.Units.GetByKey, companyID, symbol)
		if err != nil {
			return nil, err
		}
		if ok {
			item.UnitID = &u.ID
		}
	}
	return item, nil
}

// placeholderItem is created when a voucher names an unknown item.
func placeholderItem(companyID id.ID, name string) *entity.StockItem {
	return entity.NewStockItem(companyID, name, decimal.Zero, decimal.Zero)
}
