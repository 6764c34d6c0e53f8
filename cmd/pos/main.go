// Command pos corre una sesión de punto de venta en la terminal: es la capa
// de presentación del motor de ventas (interfaz in-process, sin red). Cada
// comando del operador invoca una operación del motor; el estado del carrito,
// el cliente atado y los mensajes del escáner se imprimen tras cada comando.
package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/Saurabh752007/ShopMaster/internal/application/sale"
	"github.com/Saurabh752007/ShopMaster/internal/bus"
	"github.com/Saurabh752007/ShopMaster/internal/infrastructure/docstore"
	"github.com/Saurabh752007/ShopMaster/internal/infrastructure/pdf"
	"github.com/Saurabh752007/ShopMaster/pkg/config"
	"github.com/Saurabh752007/ShopMaster/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:   cfg.App.Env,
		Level: cfg.App.LogLevel,
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Str("data_dir", cfg.Store.DataDir).
		Msg("iniciando sesión de punto de venta")

	store, err := docstore.Open(cfg.Store.DataDir, log)
	if err != nil {
		log.Fatal().Err(err).Msg("abrir almacén documental")
	}

	catalogRepo := docstore.NewCatalogRepository(store)
	customerRepo := docstore.NewCustomerRepository(store)
	billRepo := docstore.NewBillRepository(store)
	txRunner := docstore.NewTxRunner(store)
	changeBus := bus.New()

	if err := seedIfEmpty(catalogRepo, customerRepo, log); err != nil {
		log.Fatal().Err(err).Msg("sembrar datos iniciales")
	}

	taxRate, err := cfg.Sale.TaxRateDecimal()
	if err != nil {
		log.Fatal().Err(err).Msg("tasa de impuesto inválida")
	}

	cache, err := sale.NewCatalogCache(catalogRepo, changeBus, log)
	if err != nil {
		log.Fatal().Err(err).Msg("cargar caché de catálogo")
	}
	defer cache.Close()

	cart := sale.NewCart()
	resolver := sale.NewCustomerResolver(customerRepo)
	scanner := sale.NewScanPipeline(cache, cart, cfg.Sale.ScanCooldown(), log)
	checkout := sale.NewCheckout(txRunner, changeBus, cart, resolver, sale.CheckoutConfig{
		TaxRate:       taxRate,
		CommitLatency: cfg.Sale.CommitLatency(),
	}, log)
	receipts := pdf.NewReceiptGenerator(cfg.App.Name, taxRate)

	session := &session{
		cfg:      cfg,
		log:      log,
		cache:    cache,
		cart:     cart,
		resolver: resolver,
		scanner:  scanner,
		checkout: checkout,
		billRepo: billRepo,
		receipts: receipts,
	}
	session.run()
}

// session agrupa los colaboradores del motor para el loop de comandos.
type session struct {
	cfg      *config.Config
	log      *logger.Logger
	cache    *sale.CatalogCache
	cart     *sale.Cart
	resolver *sale.CustomerResolver
	scanner  *sale.ScanPipeline
	checkout *sale.Checkout
	billRepo *docstore.BillRepository
	receipts *pdf.ReceiptGenerator
}

func (s *session) run() {
	fmt.Println("ShopMaster POS — escriba 'help' para la lista de comandos")
	in := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("> ")
		if !in.Scan() {
			return
		}
		fields := strings.Fields(in.Text())
		if len(fields) == 0 {
			continue
		}
		cmd, args := fields[0], fields[1:]
		if cmd == "quit" || cmd == "exit" {
			return
		}
		s.dispatch(cmd, args)
	}
}

func (s *session) dispatch(cmd string, args []string) {
	switch cmd {
	case "help":
		printHelp()
	case "items":
		s.printItems(strings.Join(args, " "))
	case "cart":
		s.printCart()
	case "add":
		s.addItem(args)
	case "qty":
		s.setQuantity(args)
	case "rm":
		if len(args) == 1 {
			s.cart.Remove(args[0])
			s.printCart()
		} else {
			fmt.Println("uso: rm <item-id>")
		}
	case "scan":
		s.scan(args)
	case "customer":
		s.searchCustomers(strings.Join(args, " "))
	case "select":
		s.selectCustomer(args)
	case "quickadd":
		c := s.resolver.QuickAdd(strings.Join(args, " "))
		fmt.Printf("cliente de mostrador seleccionado: %s (%s)\n", c.Name, c.ID)
	case "checkout":
		s.doCheckout(args)
	case "new":
		if err := s.checkout.Reset(); err != nil {
			fmt.Println("error:", err)
			return
		}
		fmt.Println("transacción nueva iniciada")
	case "receipt":
		s.writeReceipt()
	case "bills":
		s.printBills()
	default:
		fmt.Printf("comando desconocido %q; escriba 'help'\n", cmd)
	}
}

func printHelp() {
	fmt.Print(`comandos:
  items [texto]        listar catálogo (filtrado por nombre/categoría)
  add <id> [qty]       agregar artículo al carrito
  qty <id> <n>         fijar cantidad de una línea
  rm <id>              quitar línea del carrito
  scan <código>        simular un código decodificado por el escáner
  cart                 mostrar carrito y totales
  customer <texto>     buscar clientes por nombre o teléfono
  select <id>          atar la venta a un cliente existente
  quickadd [nombre]    alta rápida de cliente de mostrador
  checkout [Paid|Pending] [Cash|Card|UPI]   finalizar la venta
  new                  iniciar transacción nueva
  receipt              escribir el PDF del último recibo
  bills                listar facturas recientes
  quit                 salir
`)
}

func (s *session) printItems(query string) {
	items := s.cache.Filter(query)
	if len(items) == 0 {
		fmt.Println("sin resultados")
		return
	}
	for _, p := range items {
		code := p.Barcode
		if code == "" {
			code = "-"
		}
		fmt.Printf("  %-4s %-28s ₹%-9s stock:%-4d %-20s [%s]\n",
			p.ID, p.Name, p.Price.StringFixed(2), p.Stock, p.Category, code)
	}
}

func (s *session) printCart() {
	lines := s.cart.Lines()
	if len(lines) == 0 {
		fmt.Println("el carrito está vacío")
		return
	}
	for _, l := range lines {
		fmt.Printf("  %-4s %-28s x%-3d ₹%s\n",
			l.Product.ID, l.Product.Name, l.Quantity, l.Subtotal().StringFixed(2))
	}
	rate := s.checkout.TaxRate()
	fmt.Printf("  subtotal ₹%s  impuesto ₹%s  total ₹%s\n",
		s.cart.Subtotal().StringFixed(2),
		s.cart.Tax(rate).StringFixed(2),
		s.cart.Total(rate).StringFixed(2))
	if c := s.resolver.Selected(); c != nil {
		fmt.Printf("  cliente: %s (%s)\n", c.Name, c.ID)
	} else {
		fmt.Println("  cliente: sin seleccionar")
	}
}

func (s *session) addItem(args []string) {
	if len(args) < 1 || len(args) > 2 {
		fmt.Println("uso: add <item-id> [qty]")
		return
	}
	qty := 1
	if len(args) == 2 {
		n, err := strconv.Atoi(args[1])
		if err != nil || n < 1 {
			fmt.Println("cantidad inválida:", args[1])
			return
		}
		qty = n
	}
	item, ok := s.cache.ByID(args[0])
	if !ok {
		fmt.Println("artículo no encontrado:", args[0])
		return
	}
	s.cart.Add(item, qty)
	s.printCart()
}

func (s *session) setQuantity(args []string) {
	if len(args) != 2 {
		fmt.Println("uso: qty <item-id> <n>")
		return
	}
	n, err := strconv.Atoi(args[1])
	if err != nil {
		fmt.Println("cantidad inválida:", args[1])
		return
	}
	s.cart.SetQuantity(args[0], n)
	s.printCart()
}

func (s *session) scan(args []string) {
	if len(args) != 1 {
		fmt.Println("uso: scan <código>")
		return
	}
	s.scanner.OnDecoded(args[0])
	if msg := s.scanner.LastMessage(); msg != "" {
		fmt.Println(" ", msg)
	} else {
		fmt.Println("  (evento descartado: cooldown activo)")
	}
}

func (s *session) searchCustomers(query string) {
	results, err := s.resolver.Search(query)
	if err != nil {
		fmt.Println("error:", err)
		return
	}
	if len(results) == 0 {
		fmt.Println("sin resultados; use 'quickadd' para un cliente de mostrador")
		return
	}
	for _, c := range results {
		fmt.Printf("  %-12s %-22s %-12s gastado: ₹%s\n",
			c.ID, c.Name, c.Phone, c.TotalSpent.StringFixed(2))
	}
}

func (s *session) selectCustomer(args []string) {
	if len(args) != 1 {
		fmt.Println("uso: select <customer-id>")
		return
	}
	c, err := s.resolver.ByID(args[0])
	if err != nil {
		fmt.Println("error:", err)
		return
	}
	s.resolver.Select(c)
	fmt.Printf("cliente seleccionado: %s (%s)\n", c.Name, c.ID)
}

func (s *session) doCheckout(args []string) {
	var in sale.CheckoutInput
	if len(args) > 0 {
		in.Status = args[0]
	}
	if len(args) > 1 {
		in.PaymentMode = args[1]
	}
	fmt.Println("procesando venta...")
	result, err := s.checkout.Submit(context.Background(), in)
	if err != nil {
		fmt.Println("checkout rechazado:", err)
		return
	}
	b := result.Bill
	fmt.Printf("venta completada: recibo #%s para %s por ₹%s (%s, %s)\n",
		b.Number, b.CustomerName, b.Amount.StringFixed(2), b.Status, b.PaymentMode)
	fmt.Println("use 'receipt' para el PDF o 'new' para otra transacción")
}

func (s *session) writeReceipt() {
	bill, ok := s.checkout.LastBill()
	if !ok {
		fmt.Println("no hay ventas completadas en esta sesión")
		return
	}
	data, err := s.receipts.GenerateReceiptPDF(&bill)
	if err != nil {
		fmt.Println("error:", err)
		return
	}
	if err := os.MkdirAll(s.cfg.Sale.ReceiptDir, 0o755); err != nil {
		fmt.Println("error:", err)
		return
	}
	path := filepath.Join(s.cfg.Sale.ReceiptDir, bill.Number+".pdf")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		fmt.Println("error:", err)
		return
	}
	fmt.Println("recibo escrito en", path)
}

func (s *session) printBills() {
	bills, err := s.billRepo.LoadAll()
	if err != nil {
		fmt.Println("error:", err)
		return
	}
	if len(bills) == 0 {
		fmt.Println("no hay facturas")
		return
	}
	for i, b := range bills {
		if i == 10 {
			fmt.Printf("  ... y %d más\n", len(bills)-10)
			return
		}
		fmt.Printf("  #%-9s %s  %-22s ₹%-10s %s/%s (%d arts.)\n",
			b.Number, b.Date.Format("2006-01-02"), b.CustomerName,
			b.Amount.StringFixed(2), b.Status, b.PaymentMode, b.TotalUnits())
	}
}
