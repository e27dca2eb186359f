package querycache

type Mutation string

const (
	AddProduct         Mutation = "addProduct"
	UpdateProduct      Mutation = "updateProduct"
	DeleteProduct      Mutation = "deleteProduct"
	DeleteProductImage Mutation = "deleteProductImage"

	AddToCart      Mutation = "addToCart"
	RemoveFromCart Mutation = "removeFromCart"
	IncreaseItem   Mutation = "increaseItem"
	DecreaseItem   Mutation = "decreaseItem"
	ClearCart      Mutation = "clearCart"
	MergeCart      Mutation = "mergeCart"

	AddToWishlist      Mutation = "addToWishlist"
	RemoveFromWishlist Mutation = "removeFromWishlist"
	ClearWishlist      Mutation = "clearWishlist"

	CreateOrder       Mutation = "createOrder"
	UpdateOrderStatus Mutation = "updateOrderStatus"
)

// Invalidates lists the tags a successful mutation makes stale. id is the
// affected entity where the mutation has one.
func Invalidates(m Mutation, id string) []Tag {
	switch m {
	case AddProduct:
		return []Tag{ProductList()}
	case UpdateProduct, DeleteProductImage:
		return []Tag{ProductList(), Product(id)}
	case DeleteProduct:
		// carts and wishlists holding the product lose their line server-side
		return []Tag{ProductList(), Product(id), Cart(), Wishlist()}
	case AddToCart, RemoveFromCart, IncreaseItem, DecreaseItem, ClearCart, MergeCart:
		return []Tag{Cart()}
	case AddToWishlist, RemoveFromWishlist, ClearWishlist:
		return []Tag{Wishlist()}
	case CreateOrder:
		return []Tag{Cart(), {Type: TypeOrder}}
	case UpdateOrderStatus:
		return []Tag{Order(id), OrderList()}
	default:
		return nil
	}
}

// After invalidates the tags for m and returns the stale keys.
func (c *Cache) After(m Mutation, id string) []string {
	return c.Invalidate(Invalidates(m, id)...)
}
