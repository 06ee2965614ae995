// Package storefront is the page: the explicit context every engine call
// runs in.
//
// A Page owns one store handle and the engines built on it. Dispatch applies
// one intent and recomputes the badges under the page lock, so no other intent
// on the same page interleaves between the write and the recount. Two pages
// over one medium are not coordinated; see package store.
package storefront

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/roach88/shopsync/internal/apperr"
	"github.com/roach88/shopsync/internal/cart"
	"github.com/roach88/shopsync/internal/catalog"
	"github.com/roach88/shopsync/internal/clock"
	"github.com/roach88/shopsync/internal/dashboard"
	"github.com/roach88/shopsync/internal/identity"
	"github.com/roach88/shopsync/internal/idgen"
	"github.com/roach88/shopsync/internal/metrics"
	"github.com/roach88/shopsync/internal/model"
	"github.com/roach88/shopsync/internal/money"
	"github.com/roach88/shopsync/internal/session"
	"github.com/roach88/shopsync/internal/store"
	"github.com/roach88/shopsync/internal/wishlist"
)

var errStoreRequired = errors.New("storefront: store is required")

// Deps wires a Page. Only Store is required.
type Deps struct {
	Store    *store.Store
	Clock    clock.Clock
	IDs      idgen.Generator
	Logger   *zap.Logger
	Metrics  *metrics.Recorder
	Notifier Notifier
}

// Page serializes intents against one store.
type Page struct {
	mu sync.Mutex

	store   *store.Store
	log     *zap.Logger
	metrics *metrics.Recorder
	notify  Notifier
	queue   *intentQueue

	cart      *cart.Engine
	wishlist  *wishlist.Engine
	catalog   *catalog.Pipeline
	sessions  *session.Manager
	dashboard *dashboard.View
}

// New builds a Page and its engines.
func New(deps Deps) (*Page, error) {
	if deps.Store == nil {
		return nil, errStoreRequired
	}
	if deps.Clock == nil {
		deps.Clock = clock.System{}
	}
	if deps.IDs == nil {
		deps.IDs = idgen.UUIDv7Generator{}
	}
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}
	if deps.Notifier == nil {
		deps.Notifier = NotifierFunc(func(Outcome) {})
	}

	c, err := cart.New(cart.Deps{Store: deps.Store, Logger: deps.Logger.Named("cart")})
	if err != nil {
		return nil, err
	}
	w, err := wishlist.New(wishlist.Deps{Store: deps.Store, Clock: deps.Clock, Logger: deps.Logger.Named("wishlist")})
	if err != nil {
		return nil, err
	}
	cat, err := catalog.New(catalog.Deps{Store: deps.Store, Clock: deps.Clock, IDs: deps.IDs, Logger: deps.Logger.Named("catalog")})
	if err != nil {
		return nil, err
	}
	s, err := session.New(session.Deps{Store: deps.Store, IDs: deps.IDs, Logger: deps.Logger.Named("session")})
	if err != nil {
		return nil, err
	}

	return &Page{
		store:     deps.Store,
		log:       deps.Logger,
		metrics:   deps.Metrics,
		notify:    deps.Notifier,
		queue:     newIntentQueue(),
		cart:      c,
		wishlist:  w,
		catalog:   cat,
		sessions:  s,
		dashboard: dashboard.New(deps.Store),
	}, nil
}

// Cart returns the page's cart engine for read-only views.
func (p *Page) Cart() *cart.Engine { return p.cart }

// Wishlist returns the page's wishlist engine for read-only views.
func (p *Page) Wishlist() *wishlist.Engine { return p.wishlist }

// Catalog returns the page's catalog pipeline for read-only views.
func (p *Page) Catalog() *catalog.Pipeline { return p.catalog }

// Sessions returns the page's session manager.
func (p *Page) Sessions() *session.Manager { return p.sessions }

// Dashboards returns the page's role aggregation view.
func (p *Page) Dashboards() *dashboard.View { return p.dashboard }

// Badges recomputes the cart and wishlist counts.
func (p *Page) Badges(ctx context.Context) (Badges, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.badgesLocked(ctx)
}

func (p *Page) badgesLocked(ctx context.Context) (Badges, error) {
	c, err := p.cart.Count(ctx)
	if err != nil {
		return Badges{}, err
	}
	w, err := p.wishlist.Count(ctx)
	if err != nil {
		return Badges{}, err
	}
	return Badges{Cart: c, Wishlist: w}, nil
}

// Dispatch applies one intent and returns what the page shows afterwards.
//
// A rejected intent (validation, not found, empty cart, login or role
// problems) is not an error: the Outcome carries its code and message and
// the store is unchanged. A storage failure is returned as an error
// alongside an Outcome holding the message to show.
func (p *Page) Dispatch(ctx context.Context, in Intent) (Outcome, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	out := Outcome{Kind: in.Kind}
	msg, err := p.apply(ctx, in)
	if err != nil {
		out.Code = apperr.CodeOf(err)
		out.Message = apperr.UserMessage(err)
		if !apperr.Recoverable(err) {
			p.metrics.Intent(string(in.Kind), outcomeLabel(out.Code))
			p.log.Error("intent_failed", zap.String("intent", string(in.Kind)), zap.Error(err))
			p.notify.Notify(out)
			return out, err
		}
		p.log.Info("intent_rejected",
			zap.String("intent", string(in.Kind)),
			zap.String("code", string(out.Code)),
			zap.String("message", out.Message),
		)
	} else {
		out.Message = msg
	}

	badges, err := p.badgesLocked(ctx)
	if err != nil {
		p.metrics.Intent(string(in.Kind), outcomeLabel(apperr.CodeOf(err)))
		p.log.Error("badge_recount_failed", zap.String("intent", string(in.Kind)), zap.Error(err))
		return out, err
	}
	out.Badges = badges

	p.metrics.Intent(string(in.Kind), outcomeLabel(out.Code))
	p.metrics.Badges(badges.Cart, badges.Wishlist)
	p.log.Debug("intent_dispatched",
		zap.String("intent", string(in.Kind)),
		zap.Int("cart", badges.Cart),
		zap.Int("wishlist", badges.Wishlist),
	)
	if out.Message != "" {
		p.notify.Notify(out)
	}
	return out, nil
}

func outcomeLabel(code apperr.Code) string {
	if code == "" {
		return "ok"
	}
	return strings.ToLower(string(code))
}

// apply runs the intent and returns the notification text.
func (p *Page) apply(ctx context.Context, in Intent) (string, error) {
	id := identity.Normalize(in.ID.String())

	switch in.Kind {
	case KindLogin:
		u, err := p.sessions.Login(ctx, in.User.session())
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("Welcome, %s!", u.Name), nil

	case KindLogout:
		return "", p.sessions.Logout(ctx)

	case KindAddToCart:
		line, err := p.cart.Add(ctx, in.Product)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("%s added to cart!", line.Name), nil

	case KindAdjustQuantity:
		_, _, err := p.cart.AdjustQuantity(ctx, id, in.Delta)
		return "", err

	case KindRemoveFromCart:
		if _, err := p.cart.Remove(ctx, id); err != nil {
			return "", err
		}
		return "Item removed from cart", nil

	case KindCheckout:
		co, err := p.cart.BeginCheckout(ctx)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("Proceeding to checkout: %d items, %s", co.Count, money.Format(co.Total)), nil

	case KindToggleWishlist:
		action, err := p.wishlist.Toggle(ctx, in.Product)
		if err != nil {
			return "", err
		}
		name := in.Product.Name
		if name == "" {
			name = identity.Normalize(in.Product.ID.String()).String()
		}
		return wishlist.ToggleMessage(name, action), nil

	case KindRemoveFromWishlist:
		if err := p.wishlist.Remove(ctx, id); err != nil {
			return "", err
		}
		return "Product removed from wishlist", nil

	case KindClearWishlist:
		if err := p.wishlist.Clear(ctx); err != nil {
			return "", err
		}
		return "Wishlist cleared", nil

	case KindWishlistToCart:
		entry, err := p.wishlist.MoveToCart(ctx, id, p.cart)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("%s added to cart!", entry.Name), nil

	case KindSubmitProduct:
		sess, err := p.sessions.Require(ctx, model.RoleShipper)
		if err != nil {
			return "", err
		}
		if _, err := p.catalog.Submit(ctx, sess, in.Submission); err != nil {
			return "", err
		}
		return "Product uploaded to warehouse successfully!", nil

	case KindPromoteProduct:
		sess, err := p.sessions.Require(ctx, model.RoleManager)
		if err != nil {
			return "", err
		}
		if _, err := p.catalog.Promote(ctx, sess, id); err != nil {
			return "", err
		}
		return "Product added to your store successfully!", nil

	case KindRemoveProduct:
		sess, err := p.sessions.Require(ctx)
		if err != nil {
			return "", err
		}
		if _, err := p.catalog.Remove(ctx, sess, id, in.Scope); err != nil {
			return "", err
		}
		if in.Scope == catalog.ScopeWarehouse {
			return "Product removed from warehouse!", nil
		}
		return "Product removed from your store!", nil

	case KindRenameStore:
		sess, err := p.sessions.Require(ctx, model.RoleManager)
		if err != nil {
			return "", err
		}
		if _, err := p.catalog.RenameStore(ctx, sess, in.StoreName); err != nil {
			return "", err
		}
		return "Store name updated successfully!", nil

	default:
		return "", apperr.Validation(fmt.Sprintf("unknown intent %q", in.Kind), "kind")
	}
}
