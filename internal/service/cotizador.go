package service

import (
	"context"
	"errors"
	"fmt"

	"fleamarket/internal/dto"
	"fleamarket/internal/model"
	"fleamarket/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// cotizador resolves cart lines against the catalog and prices them.
// Checkout and apartado creation share it so both see the same discounts.
type cotizador struct {
	productos repository.ProductoRepository
	promos    repository.PromocionRepository
	compras   *ComprasMensuales
	reloj     Reloj
}

// resolver merges repeated products, loads them and checks they can be sold.
func (c *cotizador) resolver(ctx context.Context, items []dto.ItemCarritoRequest) ([]LineaCarrito, error) {
	if len(items) == 0 {
		return nil, ErrCarritoVacio
	}

	orden := make([]uuid.UUID, 0, len(items))
	cantidades := make(map[uuid.UUID]int, len(items))
	for _, it := range items {
		id, err := uuid.Parse(it.ProductoID)
		if err != nil {
			return nil, fmt.Errorf("%w: producto_id %q", ErrDatoInvalido, it.ProductoID)
		}
		if it.Cantidad < 1 {
			return nil, fmt.Errorf("%w: cantidad debe ser al menos 1", ErrDatoInvalido)
		}
		if _, ok := cantidades[id]; !ok {
			orden = append(orden, id)
		}
		cantidades[id] += it.Cantidad
	}

	productos, err := c.productos.FindByIDs(ctx, orden)
	if err != nil {
		return nil, err
	}
	porID := make(map[uuid.UUID]model.Producto, len(productos))
	for _, p := range productos {
		porID[p.ID] = p
	}

	lineas := make([]LineaCarrito, 0, len(orden))
	for _, id := range orden {
		p, ok := porID[id]
		if !ok {
			return nil, fmt.Errorf("%w: producto %s", ErrNoEncontrado, id)
		}
		if !p.Activo {
			return nil, fmt.Errorf("%w: %s", ErrProductoInactivo, p.Nombre)
		}
		if p.Stock < cantidades[id] {
			return nil, fmt.Errorf("%w: %s (disponible %d)", ErrStockInsuficiente, p.Nombre, p.Stock)
		}
		lineas = append(lineas, LineaCarrito{Producto: p, Cantidad: cantidades[id]})
	}
	return lineas, nil
}

// cotizar prices the cart for a store. cliente may be nil for a walk-in sale.
func (c *cotizador) cotizar(ctx context.Context, tiendaID uuid.UUID, items []dto.ItemCarritoRequest, cliente *model.Cliente, metodo string) (Carrito, []LineaCarrito, error) {
	lineas, err := c.resolver(ctx, items)
	if err != nil {
		return Carrito{}, nil, err
	}
	promos, err := c.promos.List(ctx, true)
	if err != nil {
		return Carrito{}, nil, err
	}
	comprasMes := decimal.Zero
	if cliente != nil {
		if comprasMes, err = c.compras.Total(ctx, cliente.ID); err != nil {
			return Carrito{}, nil, err
		}
	}
	return CalcularCarrito(lineas, promos, tiendaID, comprasMes, metodo, c.reloj.Ahora()), lineas, nil
}

// buscarCliente loads an optional client id. Empty means walk-in.
func buscarCliente(ctx context.Context, repo repository.ClienteRepository, clienteID *string) (*model.Cliente, error) {
	if clienteID == nil || *clienteID == "" {
		return nil, nil
	}
	id, err := uuid.Parse(*clienteID)
	if err != nil {
		return nil, fmt.Errorf("%w: cliente_id", ErrDatoInvalido)
	}
	cliente, err := repo.FindByID(ctx, id)
	if err != nil {
		return nil, noEncontrado(err, "cliente")
	}
	return cliente, nil
}

// noEncontrado maps gorm's not-found to ErrNoEncontrado and passes anything else through.
func noEncontrado(err error, que string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("%w: %s", ErrNoEncontrado, que)
	}
	return err
}
