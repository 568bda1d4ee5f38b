package cli

import (
	"fmt"
	"sort"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/bigkaa/lms-client/internal/domain/model"
)

// newBooksCmd — группа команд каталога.
func newBooksCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "books",
		Short: "Каталог книг",
	}
	cmd.AddCommand(
		newBooksListCmd(a),
		newBooksGetCmd(a),
		newBooksAddCmd(a),
		newBooksUpdateCmd(a),
		newBooksDeleteCmd(a),
		newBooksCategoriesCmd(a),
		newBooksCoverCmd(a),
	)
	return cmd
}

func newBooksListCmd(a *app) *cobra.Command {
	var filter model.BookFilter

	cmd := &cobra.Command{
		Use:   "list",
		Short: "Список книг каталога",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			books, err := a.books.List(cmd.Context(), filter)
			if err != nil {
				return err
			}

			w := table()
			fmt.Fprintln(w, "ID\tНАЗВАНИЕ\tАВТОР\tКАТЕГОРИЯ\tДОСТУПНО")
			for _, b := range books {
				fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%d/%d\n",
					b.ID, b.Title, b.Author, b.Category, b.AvailableCopies, b.TotalCopies)
			}
			return w.Flush()
		},
	}

	cmd.Flags().StringVarP(&filter.Q, "query", "q", "", "поиск по названию/автору/ISBN")
	cmd.Flags().StringVar(&filter.Category, "category", "", "категория")
	cmd.Flags().StringVar(&filter.Subcategory, "subcategory", "", "подкатегория")
	cmd.Flags().StringVar(&filter.BookFormat, "format", "", "формат издания")
	cmd.Flags().IntVar(&filter.PublicationYear, "year", 0, "год издания")
	cmd.Flags().StringVar(&filter.Shelf, "shelf", "", "полка")
	return cmd
}

func newBooksGetCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "get <id>",
		Short: "Карточка книги",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			b, err := a.books.Get(cmd.Context(), id)
			if err != nil {
				return err
			}

			fmt.Printf("%s — %s\n", b.Title, b.Author)
			if b.ISBN != "" {
				fmt.Printf("ISBN: %s\n", b.ISBN)
			}
			if b.Category != "" {
				fmt.Printf("Категория: %s / %s\n", b.Category, b.Subcategory)
			}
			if b.PublicationYear != 0 {
				fmt.Printf("Год издания: %d\n", b.PublicationYear)
			}
			if b.Shelf != "" {
				fmt.Printf("Полка: %s\n", b.Shelf)
			}
			fmt.Printf("Доступно: %d из %d\n", b.AvailableCopies, b.TotalCopies)
			if b.Description != "" {
				fmt.Println(b.Description)
			}
			if b.CoverURL != "" {
				fmt.Printf("Обложка: %s\n", b.CoverURL)
			}
			return nil
		},
	}
}

// bookFlags навешивает флаги карточки книги.
func bookFlags(cmd *cobra.Command, b *model.Book) {
	cmd.Flags().StringVar(&b.Title, "title", "", "название")
	cmd.Flags().StringVar(&b.Author, "author", "", "автор")
	cmd.Flags().StringVar(&b.ISBN, "isbn", "", "ISBN")
	cmd.Flags().StringVar(&b.Category, "category", "", "категория")
	cmd.Flags().StringVar(&b.Subcategory, "subcategory", "", "подкатегория")
	cmd.Flags().StringVar(&b.Description, "description", "", "аннотация")
	cmd.Flags().IntVar(&b.PublicationYear, "year", 0, "год издания")
	cmd.Flags().StringVar(&b.BookFormat, "format", "", "формат издания")
	cmd.Flags().StringVar(&b.Shelf, "shelf", "", "полка")
	cmd.Flags().IntVar(&b.TotalCopies, "copies", 1, "количество экземпляров")
}

func newBooksAddCmd(a *app) *cobra.Command {
	var book model.Book

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Добавить книгу (библиотекарь)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			book.AvailableCopies = book.TotalCopies
			created, err := a.books.Create(cmd.Context(), book)
			if err != nil {
				return err
			}
			fmt.Printf("Книга добавлена: id %d\n", created.ID)
			return nil
		},
	}

	bookFlags(cmd, &book)
	cmd.MarkFlagRequired("title")
	cmd.MarkFlagRequired("author")
	return cmd
}

func newBooksUpdateCmd(a *app) *cobra.Command {
	var book model.Book

	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Изменить карточку книги (библиотекарь)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			updated, err := a.books.Update(cmd.Context(), id, book)
			if err != nil {
				return err
			}
			fmt.Printf("Книга %d обновлена\n", updated.ID)
			return nil
		},
	}

	bookFlags(cmd, &book)
	return cmd
}

func newBooksDeleteCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <isbn>",
		Short: "Удалить книгу по ISBN (библиотекарь)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.books.Delete(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Printf("Книга %s удалена\n", args[0])
			return nil
		},
	}
}

func newBooksCategoriesCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "categories",
		Short: "Дерево категорий каталога",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			categories, err := a.books.Categories(cmd.Context())
			if err != nil {
				return err
			}

			names := make([]string, 0, len(categories))
			for name := range categories {
				names = append(names, name)
			}
			sort.Strings(names)

			for _, name := range names {
				fmt.Println(name)
				subs := categories[name]
				sort.Strings(subs)
				for _, sub := range subs {
					fmt.Printf("  %s\n", sub)
				}
			}
			return nil
		},
	}
}

func newBooksCoverCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "cover <id> <file>",
		Short: "Загрузить обложку книги (библиотекарь)",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			book, err := a.books.UploadCover(cmd.Context(), id, args[1])
			if err != nil {
				return err
			}
			fmt.Printf("Обложка загружена: %s\n", book.CoverURL)
			return nil
		},
	}
}

// parseID разбирает числовой идентификатор из аргумента команды.
func parseID(arg string) (int64, error) {
	id, err := strconv.ParseInt(arg, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("некорректный id %q", arg)
	}
	return id, nil
}
